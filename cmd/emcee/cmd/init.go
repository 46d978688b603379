package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rosshadden/emcee/internal/config"
)

var (
	// errConfigExists is returned when init would overwrite a config file.
	errConfigExists = errors.New("configuration file already exists")

	initForce bool

	// initCmd writes a configuration file holding the defaults.
	initCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !initForce {
				return fmt.Errorf("%w: %s", errConfigExists, path)
			}

			cfg := config.Default()
			if err := config.Save(path, cfg); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (game version %s)\n", path, cfg.GameVersion)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}
