package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the daily-agent CLI
func NewRootCmd(open Opener, loadConfig ConfigLoader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "daily-agent",
		Short:         "Command line companion for the Lokha daily agent",
		Long:          "Inspect and change settings, tasks and trained patterns, chat with Lokha and check the configured backends.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewSettingsCmd(open))
	rootCmd.AddCommand(NewTasksCmd(open))
	rootCmd.AddCommand(NewPatternsCmd(open))
	rootCmd.AddCommand(NewChatCmd(open))
	rootCmd.AddCommand(NewExportCmd(open))
	rootCmd.AddCommand(NewCheckCmd(loadConfig))
	return rootCmd
}
