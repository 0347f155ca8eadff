package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plug-cli",
	Short: "Plug CLI tool",
	Long: `Plug CLI is a command-line companion for the Plug chat server.

Available commands:
  chat      Talk to the configured reply backend from the terminal
  call      Invoke a callable function
  topics    List the message bus topics
  version   Print the CLI version

Use "plug-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
