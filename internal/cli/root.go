package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strefethen/sonos-nowplaying-go/internal/config"
)

// Version is set at build time.
var Version = "dev"

type rootFlags struct {
	ConfigPath string
	Debug      bool
}

// loadConfig is swapped in tests.
var loadConfig = config.Load

// Execute runs the command line.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:          "sonos-nowplaying",
		Short:        "Show what every Sonos zone is playing",
		Long:         "Polls a node-sonos-http-api style /zones endpoint, normalizes each zone into a display room and serves the list over HTTP and WebSocket.",
		Example:      "  sonos-nowplaying serve\n  sonos-nowplaying once --config mirror.yaml\n  sonos-nowplaying token --sub hallway",
		SilenceUsage: true,
		Version:      Version,
	}
	rootCmd.SetVersionTemplate("sonos-nowplaying {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "YAML config file (defaults to $CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newOnceCmd(flags))
	rootCmd.AddCommand(newTokenCmd(flags))

	return rootCmd
}

func (flags *rootFlags) load() (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(flags.ConfigPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if flags.Debug {
		cfg.LogLevel = "debug"
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zap.NewDevelopment()
	case "warn", "error":
		cfg := zap.NewProductionConfig()
		parsed, err := zap.ParseAtomicLevel(strings.ToLower(level))
		if err != nil {
			return nil, err
		}
		cfg.Level = parsed
		return cfg.Build()
	default:
		return zap.NewProduction()
	}
}
