package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/headersync/cmd"
)

func init() {
	rootCmd.AddCommand(
		cmd.Sync(
			cmd.ConfigFlags(),
			cmd.SyncFlags(),
			cmd.SourcesFlags(),
			cmd.ExportFlags(),
			cmd.MiscFlags(),
		),
		cmd.Serve(
			cmd.ServeFlags(),
			cmd.MiscFlags(),
		),
		cmd.ConfigInit(),
	)
	rootCmd.SetHelpCommand(&cobra.Command{})
}

var rootCmd = &cobra.Command{
	Use:   "headersync [subcommand]",
	Short: "Light-client header synchronizer",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func main() {
	os.Exit(cmd.ExitCode(run()))
}

func run() error {
	return rootCmd.ExecuteContext(cmd.WithEnv(context.Background()))
}
