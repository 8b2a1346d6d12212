// Package main provides the CLI entrypoint for the URI beacon service.
// It wires subcommands (encode, decode, rotate, serve), loads configuration,
// and initializes logging.
package main

import (
	"context"
	"os"
	"uribeacon/internal/config"
	"uribeacon/pkg/logger"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand shares. cfg is set by the root command's
// PersistentPreRunE, before any subcommand runs.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "uribeacon",
		Short:         "Encodes, decodes and broadcasts UriBeacon / Eddystone-URL payloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return errors.Wrap(err, "could not load config")
			}
			a.cfg = cfg
			logger.Setup(cfg.Environment, cfg.LogLevel)

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yml", "Config File Path")

	rootCmd.AddCommand(
		encodeCommand(),
		decodeCommand(),
		rotateCommand(a),
		serveCommand(a),
	)

	return rootCmd
}

// main builds the root Cobra command and executes the CLI.
func main() {
	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd := newRootCommand(&app{})
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
