package internal

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/4thel00z/gitstow/internal/blobstore"
	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

const (
	initialCommitMessage = "Initial commit"
	starterFileName      = "README.md"
)

// RepositoryService runs every repository operation through the same
// lifecycle: resolve the storage path, acquire a scratch workspace, sync the
// metadata tree down, drive git locally, sync back when something changed,
// and release the workspace no matter how the operation ended.
type RepositoryService struct {
	store      blobstore.Store
	workspaces *WorkspaceManager
	syncer     *TreeSyncer
	logger     *zap.Logger
}

func NewRepositoryService(store blobstore.Store, workspaces *WorkspaceManager, logger *zap.Logger) *RepositoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workspaces == nil {
		workspaces = NewWorkspaceManager("", logger)
	}
	return &RepositoryService{
		store:      store,
		workspaces: workspaces,
		syncer:     NewTreeSyncer(store, logger),
		logger:     logger,
	}
}

// Initialize creates a brand-new repository for an application: a fresh git
// repository on the default branch holding one starter file, committed and
// uploaded to the storage path. Returns the initial commit hash.
func (s *RepositoryService) Initialize(ctx context.Context, appID, storagePath string, author Author) (string, error) {
	location, err := ParseStoragePath(storagePath)
	if err != nil {
		return "", s.fail("initialize", appID, err)
	}
	if err := author.Validate(); err != nil {
		return "", s.fail("initialize", appID, err)
	}

	workspace, err := s.workspaces.Acquire()
	if err != nil {
		return "", s.fail("initialize", appID, err)
	}
	defer s.workspaces.Release(workspace)

	repo, err := InitGitRepository(workspace)
	if err != nil {
		return "", s.fail("initialize", appID, err)
	}

	readme := fmt.Sprintf("# %s\n", appID)
	if err := repo.WriteFile(starterFileName, []byte(readme)); err != nil {
		return "", s.fail("initialize", appID, err)
	}
	if err := repo.Stage(starterFileName); err != nil {
		return "", s.fail("initialize", appID, err)
	}

	sha, err := repo.Commit(initialCommitMessage, author)
	if err != nil {
		return "", s.fail("initialize", appID, err)
	}

	if err := s.syncer.Upload(ctx, repo.GitDir(), location.Bucket, location.Prefix); err != nil {
		return "", s.fail("initialize", appID, err)
	}

	s.logger.Info("initialized repository",
		zap.String("app", appID),
		zap.String("path", location.String()),
		zap.String("sha", sha))
	return sha, nil
}

// CommitChanges records a set of file contents as one commit and uploads the
// updated metadata tree. The change set maps repository-relative paths to
// full file contents. A change set that leaves the staging area empty fails
// with ErrNothingToCommit and uploads nothing.
func (s *RepositoryService) CommitChanges(ctx context.Context, appID, storagePath string, files map[string][]byte, author Author, message string) (string, error) {
	location, err := ParseStoragePath(storagePath)
	if err != nil {
		return "", s.fail("commit", appID, err)
	}
	if err := author.Validate(); err != nil {
		return "", s.fail("commit", appID, err)
	}

	cleaned := make(map[string]string, len(files))
	paths := make([]string, 0, len(files))
	for p := range files {
		rel, err := cleanChangePath(p)
		if err != nil {
			return "", s.fail("commit", appID, err)
		}
		cleaned[p] = rel
		paths = append(paths, p)
	}
	sort.Strings(paths)

	repo, workspace, err := s.openAt(ctx, "commit", appID, location)
	if err != nil {
		return "", err
	}
	defer s.workspaces.Release(workspace)

	for _, p := range paths {
		rel := cleaned[p]
		if err := repo.WriteFile(rel, files[p]); err != nil {
			return "", s.fail("commit", appID, fmt.Errorf("%s: %w", rel, err))
		}
		if err := repo.Stage(rel); err != nil {
			return "", s.fail("commit", appID, fmt.Errorf("%s: %w", rel, err))
		}
	}

	staged, err := repo.StagedCount()
	if err != nil {
		return "", s.fail("commit", appID, err)
	}
	if staged == 0 {
		return "", s.fail("commit", appID, ErrNothingToCommit)
	}

	sha, err := repo.Commit(message, author)
	if err != nil {
		return "", s.fail("commit", appID, err)
	}

	if err := s.syncer.Upload(ctx, repo.GitDir(), location.Bucket, location.Prefix); err != nil {
		return "", s.fail("commit", appID, err)
	}

	s.logger.Info("committed changes",
		zap.String("app", appID),
		zap.String("sha", sha),
		zap.Int("paths", len(paths)))
	return sha, nil
}

// History returns commit records, newest first. A limit of zero or less
// returns the full history.
func (s *RepositoryService) History(ctx context.Context, appID, storagePath string, limit int) ([]CommitRecord, error) {
	repo, workspace, err := s.openRemote(ctx, "history", appID, storagePath)
	if err != nil {
		return nil, err
	}
	defer s.workspaces.Release(workspace)

	records, err := repo.Log(ctx, limit)
	if err != nil {
		return nil, s.fail("history", appID, err)
	}
	return records, nil
}

// BranchInfo reports the checked-out branch and its head commit. A storage
// path nothing was ever uploaded to, or a repository whose branch has no
// commits yet, yields the default branch with a nil LastCommit instead of an
// error.
func (s *RepositoryService) BranchInfo(ctx context.Context, appID, storagePath string) (*BranchInfo, error) {
	location, err := ParseStoragePath(storagePath)
	if err != nil {
		return nil, s.fail("branch-info", appID, err)
	}

	workspace, err := s.workspaces.Acquire()
	if err != nil {
		return nil, s.fail("branch-info", appID, err)
	}
	defer s.workspaces.Release(workspace)

	if err := s.syncer.Download(ctx, location.Bucket, location.Prefix, filepath.Join(workspace, gitDirName)); err != nil {
		return nil, s.fail("branch-info", appID, err)
	}

	repo, err := OpenGitRepository(workspace)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return &BranchInfo{CurrentBranch: DefaultBranch}, nil
	}
	if err != nil {
		return nil, s.fail("branch-info", appID, err)
	}

	info := &BranchInfo{CurrentBranch: repo.CurrentBranch()}
	last, err := repo.LastCommit(ctx)
	if err != nil {
		return nil, s.fail("branch-info", appID, err)
	}
	info.LastCommit = last
	return info, nil
}

// Diff renders the unified diff a revision introduced. An empty revision
// means HEAD.
func (s *RepositoryService) Diff(ctx context.Context, appID, storagePath, rev string) (string, error) {
	repo, workspace, err := s.openRemote(ctx, "diff", appID, storagePath)
	if err != nil {
		return "", err
	}
	defer s.workspaces.Release(workspace)

	patch, err := repo.PatchText(ctx, rev)
	if err != nil {
		return "", s.fail("diff", appID, err)
	}
	return patch, nil
}

// Files lists every path tracked at a revision. An empty revision means HEAD.
func (s *RepositoryService) Files(ctx context.Context, appID, storagePath, rev string) ([]string, error) {
	repo, workspace, err := s.openRemote(ctx, "files", appID, storagePath)
	if err != nil {
		return nil, err
	}
	defer s.workspaces.Release(workspace)

	files, err := repo.FilesAtRevision(ctx, rev)
	if err != nil {
		return nil, s.fail("files", appID, err)
	}
	return files, nil
}

// openRemote resolves a storage path, acquires a workspace, downloads the
// metadata tree into it and opens the repository. On failure the workspace
// is already released.
func (s *RepositoryService) openRemote(ctx context.Context, op, appID, storagePath string) (*GitRepository, string, error) {
	location, err := ParseStoragePath(storagePath)
	if err != nil {
		return nil, "", s.fail(op, appID, err)
	}
	return s.openAt(ctx, op, appID, location)
}

func (s *RepositoryService) openAt(ctx context.Context, op, appID string, location StorageLocation) (*GitRepository, string, error) {
	workspace, err := s.workspaces.Acquire()
	if err != nil {
		return nil, "", s.fail(op, appID, err)
	}

	if err := s.syncer.Download(ctx, location.Bucket, location.Prefix, filepath.Join(workspace, gitDirName)); err != nil {
		s.workspaces.Release(workspace)
		return nil, "", s.fail(op, appID, err)
	}

	repo, err := OpenGitRepository(workspace)
	if err != nil {
		s.workspaces.Release(workspace)
		return nil, "", s.fail(op, appID, err)
	}
	return repo, workspace, nil
}

// fail wraps a step error into the boundary error type, keeping an inner
// SyncError (from the sync layer) untouched so the most specific step name
// wins.
func (s *RepositoryService) fail(op, appID string, err error) error {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return err
	}
	return &SyncError{Op: op, Target: appID, Err: err}
}

// cleanChangePath validates one change-set path and returns its canonical
// slash-separated form. Anything that could land outside the workspace or
// inside the metadata directory is rejected.
func cleanChangePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path: %w", ErrPathOutsideRoot)
	}
	if strings.Contains(p, "\\") || path.IsAbs(p) {
		return "", fmt.Errorf("path %q: %w", p, ErrPathOutsideRoot)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q: %w", p, ErrPathOutsideRoot)
	}
	if clean == gitDirName || strings.HasPrefix(clean, gitDirName+"/") {
		return "", fmt.Errorf("path %q: %w", p, ErrPathOutsideRoot)
	}
	return clean, nil
}
