package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strefethen/sonos-nowplaying-go/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll zones and serve the room list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			addr := cfg.Host + ":" + cfg.Port
			handler, shutdownHandler, err := server.NewHandler(cfg, server.Options{Logger: logger})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := shutdownHandler(shutdownCtx); err != nil {
					logger.Warn("Shutdown error", zap.Error(err))
				}
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Shutdown error", zap.Error(err))
				}
			}()

			logger.Info("sonos-nowplaying listening",
				zap.String("addr", addr),
				zap.String("zones_url", cfg.ZonesURL()))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
