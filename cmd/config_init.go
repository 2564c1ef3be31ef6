package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/headersync/config"
)

// ConfigInit constructs a CLI command writing the default config to the given path.
func ConfigInit() *cobra.Command {
	return &cobra.Command{
		Use:          "config-init [path]",
		Short:        "Writes the default TOML config to the given path, to be edited and passed with --config.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfig(args[0], config.DefaultConfig()); err != nil {
				return fmt.Errorf("cmd: saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", args[0])
			return nil
		},
	}
}
