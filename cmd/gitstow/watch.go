package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/4thel00z/gitstow/internal"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and auto-commit",
		Long:  `Watch a local directory for changes and commit snapshots of it to the stored repository.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	appID, storagePath, err := target(cmd)
	if err != nil {
		return err
	}

	dir := args[0]
	debounce, _ := cmd.Flags().GetDuration("debounce")

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, dir); err != nil {
		return fmt.Errorf("add watch dirs: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", dir)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignoreEvent(event, dir) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		case <-timer.C:
			pending = false
			files, snapErr := changeSetFromDir(dir)
			if snapErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "snapshot: %v\n", snapErr)
				continue
			}

			sha, commitErr := s.service.CommitChanges(cmd.Context(), appID, storagePath, files, s.author, "auto: watch commit")
			if errors.Is(commitErr, internal.ErrNothingToCommit) {
				continue
			}
			if commitErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "commit: %v\n", commitErr)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] auto: watch commit\n", sha[:7])
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// ignoreEvent drops events outside the watched root, under dot entries, and
// ops that do not change content.
func ignoreEvent(event fsnotify.Event, root string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}

	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}
