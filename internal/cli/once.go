package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/strefethen/sonos-nowplaying-go/internal/server"
)

func newOnceCmd(flags *rootFlags) *cobra.Command {
	var showDisplay bool

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Poll zones once and print the rooms as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			svc, err := server.NewService(cfg, server.Options{Logger: logger})
			if err != nil {
				return err
			}
			if _, err := svc.Poller().PollOnce(cmd.Context()); err != nil {
				return err
			}

			var out any = svc.Rooms().Rooms()
			if showDisplay {
				out = svc.Display()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&showDisplay, "display", false, "Print template data with display filters applied")
	return cmd
}
