package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/strefethen/sonos-nowplaying-go/internal/auth"
)

func newTokenCmd(flags *rootFlags) *cobra.Command {
	var (
		sub    string
		name   string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the refresh endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.AuthSecret == "" {
				return errors.New("AUTH_SECRET is not set; auth is disabled")
			}
			if expiry <= 0 {
				expiry = time.Duration(cfg.AuthTokenExpirySec) * time.Second
			}

			token, err := auth.GenerateToken(cfg.AuthSecret, auth.TokenPayload{Sub: sub, ClientName: name}, expiry)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "cli", "Token subject")
	cmd.Flags().StringVar(&name, "name", "", "Client display name")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "Token lifetime (defaults to AUTH_TOKEN_EXPIRY seconds)")
	return cmd
}
