package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [rev]",
		Short: "List tracked files",
		Long:  `List every path tracked at a revision. Defaults to HEAD.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}

	return cmd
}

func runLs(cmd *cobra.Command, args []string) error {
	appID, storagePath, err := target(cmd)
	if err != nil {
		return err
	}

	rev := ""
	if len(args) > 0 {
		rev = args[0]
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	paths, err := s.service.Files(cmd.Context(), appID, storagePath, rev)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(paths)
	}

	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
