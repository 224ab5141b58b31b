package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gitstow",
		Short:         "Versioned application repositories over object storage",
		Long:          `Keeps git repositories in a flat blob store and runs every operation against a scratch checkout.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		NewInitCmd(),
		NewCommitCmd(),
		NewLogCmd(),
		NewInfoCmd(),
		NewDiffCmd(),
		NewLsCmd(),
		NewWatchCmd(),
		NewConfigCmd(),
	)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (defaults to the user config dir)")
	cmd.PersistentFlags().String("app", "", "Application identifier")
	cmd.PersistentFlags().String("path", "", "Storage path as bucket/prefix")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}
