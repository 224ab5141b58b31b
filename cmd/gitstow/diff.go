package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [rev]",
		Short: "Show changes a commit introduced",
		Long:  `Show the unified diff of a revision against its parent. Defaults to HEAD.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDiff,
	}

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	appID, storagePath, err := target(cmd)
	if err != nil {
		return err
	}

	rev := ""
	if len(args) > 0 {
		rev = args[0]
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	patch, err := s.service.Diff(cmd.Context(), appID, storagePath, rev)
	if err != nil {
		return fmt.Errorf("get diff: %w", err)
	}

	if patch == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), patch)
	return nil
}
