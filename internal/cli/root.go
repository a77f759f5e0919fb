// Package cli provides the factoryctl command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timmy/contentfactory/internal/app"
	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/logger"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	configPath string

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "factoryctl",
	Short: "Run content factory jobs from the command line or cron",
	Long: `factoryctl drives the content pipeline without the HTTP API.

Each command performs the same operation as its API endpoint, which makes it
suitable for cron: process queue chunks, drip sitemap entries, and scan
finished queues for near-duplicate articles.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		path := configPath
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		app.SetupLogging(cfg.Log)

		application, err = app.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(logger.SetComponent(ctx, "cli"))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.yaml)")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dripCmd)
	rootCmd.AddCommand(scanCmd)
}
