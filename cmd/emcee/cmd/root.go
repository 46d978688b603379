package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rosshadden/emcee/internal/service/updater"
	"github.com/rosshadden/emcee/internal/version"
)

var (
	// options collects flag values for the update run.
	options updater.Options

	// rootCmd updates the plugin archives of a directory.
	rootCmd = &cobra.Command{
		Use:   "emcee [directory]",
		Short: "Update plugin archives to the latest catalog files for a game version",
		Long: `Checks every plugin archive in the directory (the working directory by default)
against the catalog and replaces outdated ones with the latest file built for
the pinned game version.

Archives without embedded metadata or without a catalog match are skipped.
A catalog or download failure stops the run and exits non-zero.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.Directory = args[0]
			}

			return updater.Run(ctx, &options)
		},
	}
)

// Execute runs the emcee CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "", "path to configuration file (default ./emcee.yaml when present)")
	flags.StringVarP(&options.GameVersion, "game-version", "g", "", "game version to resolve files for")
	flags.StringVarP(&options.LogLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	flags.BoolVarP(&options.DryRun, "dry-run", "n", false, "report outdated archives without changing anything")
	flags.BoolVar(&options.NoProgress, "no-progress", false, "disable the download progress bar")

	rootCmd.AddCommand(initCmd)
}
