package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/4thel00z/gitstow/internal"
)

func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show branch and head commit",
		Long:  `Show the current branch of the stored repository and its last commit.`,
		RunE:  runInfo,
	}

	return cmd
}

func runInfo(cmd *cobra.Command, _ []string) error {
	appID, storagePath, err := target(cmd)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	info, err := s.service.BranchInfo(cmd.Context(), appID, storagePath)
	if err != nil {
		return fmt.Errorf("get branch info: %w", err)
	}

	if asJSON {
		return writeBranchInfoJSON(cmd.OutOrStdout(), info)
	}
	renderBranchInfo(cmd.OutOrStdout(), info)
	return nil
}

func writeBranchInfoJSON(w io.Writer, info *internal.BranchInfo) error {
	out := map[string]any{
		"current_branch": info.CurrentBranch,
	}
	if info.LastCommit != nil {
		out["last_commit"] = map[string]any{
			"hash":    info.LastCommit.Hash,
			"message": info.LastCommit.Message,
			"author":  info.LastCommit.Author.String(),
			"date":    info.LastCommit.Date,
			"files":   info.LastCommit.Files,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderBranchInfo(w io.Writer, info *internal.BranchInfo) {
	fmt.Fprintf(w, "On branch %s\n", info.CurrentBranch)

	if info.LastCommit == nil {
		fmt.Fprintln(w, "No commits yet.")
		return
	}
	fmt.Fprintf(w, "Last commit: %s %s (%s)\n",
		info.LastCommit.Hash[:7],
		info.LastCommit.Message,
		info.LastCommit.Date.Format("2006-01-02 15:04:05"))
}
