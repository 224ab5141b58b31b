package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/4thel00z/gitstow/internal"
)

func NewLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Long:  `Show the commit history of the stored repository, newest first.`,
		RunE:  runLog,
	}

	cmd.Flags().IntP("number", "n", 10, "Limit number of commits (0 for all)")
	cmd.Flags().Bool("oneline", false, "Show each commit on one line")
	return cmd
}

func runLog(cmd *cobra.Command, _ []string) error {
	appID, storagePath, err := target(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("number")
	oneline, _ := cmd.Flags().GetBool("oneline")
	asJSON, _ := cmd.Flags().GetBool("json")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	records, err := s.service.History(cmd.Context(), appID, storagePath, limit)
	if err != nil {
		return fmt.Errorf("get log: %w", err)
	}

	if asJSON {
		return writeCommitsJSON(cmd.OutOrStdout(), records)
	}
	renderCommits(cmd.OutOrStdout(), records, oneline)
	return nil
}

func renderCommits(w io.Writer, records []internal.CommitRecord, oneline bool) {
	for _, rec := range records {
		if oneline {
			fmt.Fprintf(w, "%s %s\n", rec.Hash[:7], rec.Message)
			continue
		}
		fmt.Fprintf(w, "commit %s\n", rec.Hash)
		fmt.Fprintf(w, "Author: %s\n", rec.Author)
		fmt.Fprintf(w, "Date:   %s\n\n", rec.Date.Format("Mon Jan 2 15:04:05 2006 -0700"))
		fmt.Fprintf(w, "    %s\n", rec.Message)
		for _, f := range rec.Files {
			fmt.Fprintf(w, "    - %s\n", f)
		}
		fmt.Fprintln(w)
	}
}

func writeCommitsJSON(w io.Writer, records []internal.CommitRecord) error {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"hash":    rec.Hash,
			"message": rec.Message,
			"author":  rec.Author.String(),
			"date":    rec.Date,
			"files":   rec.Files,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
