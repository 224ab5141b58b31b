package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

func NewCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record file changes as a commit",
		Long:  `Commit a set of files to the stored repository. Opens $EDITOR if no message provided.`,
		RunE:  runCommit,
	}

	cmd.Flags().StringP("message", "m", "", "Commit message")
	cmd.Flags().StringArray("file", nil, "File to commit as repopath=localpath (repeatable)")
	cmd.Flags().String("dir", "", "Commit every file under this directory")
	return cmd
}

func runCommit(cmd *cobra.Command, _ []string) error {
	appID, storagePath, err := target(cmd)
	if err != nil {
		return err
	}

	specs, _ := cmd.Flags().GetStringArray("file")
	dir, _ := cmd.Flags().GetString("dir")

	files, err := buildChangeSet(specs, dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("nothing to commit: pass --file or --dir")
	}

	message, _ := cmd.Flags().GetString("message")
	if message == "" {
		message, err = messageFromEditor()
		if err != nil {
			return fmt.Errorf("get message: %w", err)
		}
	}
	if message == "" {
		return fmt.Errorf("commit message required")
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	sha, err := s.service.CommitChanges(cmd.Context(), appID, storagePath, files, s.author, message)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", sha[:7], message)
	return nil
}

// messageFromEditor collects a commit message the way git does: a temp file,
// $EDITOR, comment lines stripped.
func messageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	tmp, err := os.CreateTemp("", "gitstow-commit-*.txt")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString("\n# Enter commit message above. Lines starting with # are ignored.\n"); err != nil {
		tmp.Close()
		return "", err
	}
	tmp.Close()

	c := exec.Command(editor, tmp.Name())
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return "", err
	}

	content, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", err
	}

	var kept []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), nil
}
