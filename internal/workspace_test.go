package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkspaceAcquireRelease(t *testing.T) {
	manager := NewWorkspaceManager(t.TempDir(), nil)

	dir, err := manager.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(dir), workspacePrefix) {
		t.Errorf("workspace %q missing prefix %q", dir, workspacePrefix)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("stat workspace: %v", err)
	}

	manager.Release(dir)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("workspace still present after release: %v", err)
	}
}

func TestWorkspaceUnique(t *testing.T) {
	manager := NewWorkspaceManager(t.TempDir(), nil)

	first, err := manager.Acquire()
	if err != nil {
		t.Fatalf("acquire first: %v", err)
	}
	second, err := manager.Acquire()
	if err != nil {
		t.Fatalf("acquire second: %v", err)
	}
	if first == second {
		t.Errorf("expected distinct workspaces, both are %q", first)
	}
}

func TestWorkspaceReleaseMissing(t *testing.T) {
	manager := NewWorkspaceManager(t.TempDir(), nil)

	// Releasing a path that never existed must not panic or error out.
	manager.Release(filepath.Join(t.TempDir(), "gone"))
	manager.Release("")
}
