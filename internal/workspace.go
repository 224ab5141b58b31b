package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const workspacePrefix = "gitstow-"

// WorkspaceManager hands out short-lived scratch directories, one per
// repository operation. A workspace is never reused across operations.
type WorkspaceManager struct {
	root   string
	logger *zap.Logger
}

func NewWorkspaceManager(root string, logger *zap.Logger) *WorkspaceManager {
	if root == "" {
		root = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceManager{root: root, logger: logger}
}

// Acquire creates a fresh, uniquely named workspace directory.
func (m *WorkspaceManager) Acquire() (string, error) {
	dir := filepath.Join(m.root, workspacePrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// Release removes a workspace. Removal failures are logged and swallowed;
// they never override the outcome of the operation that used the workspace.
func (m *WorkspaceManager) Release(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		m.logger.Warn("workspace cleanup failed",
			zap.String("dir", dir),
			zap.Error(err))
	}
}
