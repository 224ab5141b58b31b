package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/4thel00z/gitstow/internal/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const (
	testAppID       = "app-123"
	testStoragePath = "bucket/apps/app-123/repo"
)

func setupService(t *testing.T) (*RepositoryService, *blobstore.MemoryStore, string) {
	t.Helper()
	store := blobstore.NewMemoryStore()
	wsRoot := filepath.Join(t.TempDir(), "workspaces")
	service := NewRepositoryService(store, NewWorkspaceManager(wsRoot, nil), nil)
	return service, store, wsRoot
}

// requireNoWorkspaces asserts that no scratch directory survived, whatever
// way the operations ended.
func requireNoWorkspaces(t *testing.T, wsRoot string) {
	t.Helper()
	entries, err := os.ReadDir(wsRoot)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	require.Empty(t, entries, "leftover workspaces")
}

// failingStore wraps a real store and makes every Put fail on demand.
type failingStore struct {
	*blobstore.MemoryStore
	failPuts bool
}

func (s *failingStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if s.failPuts {
		return fmt.Errorf("injected put failure")
	}
	return s.MemoryStore.Put(ctx, bucket, key, data)
}

func TestInitializeCreatesRepository(t *testing.T) {
	service, store, wsRoot := setupService(t)
	ctx := context.Background()

	sha, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)
	require.Len(t, sha, 40)

	keys, err := store.List(ctx, "bucket", "apps/app-123/repo")
	require.NoError(t, err)
	assert.Contains(t, keys, "apps/app-123/repo/HEAD")
	assert.Contains(t, keys, "apps/app-123/repo/refs/heads/main")

	requireNoWorkspaces(t, wsRoot)
}

func TestInitializeInvalidStoragePath(t *testing.T) {
	service, _, wsRoot := setupService(t)

	_, err := service.Initialize(context.Background(), testAppID, "segmentless", testAuthor)
	require.ErrorIs(t, err, ErrInvalidStoragePath)

	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "initialize", syncErr.Op)

	requireNoWorkspaces(t, wsRoot)
}

func TestInitializeInvalidAuthor(t *testing.T) {
	service, store, wsRoot := setupService(t)
	ctx := context.Background()

	_, err := service.Initialize(ctx, testAppID, testStoragePath, Author{})
	require.Error(t, err)

	keys, err := store.List(ctx, "bucket", "")
	require.NoError(t, err)
	assert.Empty(t, keys, "nothing should have been uploaded")

	requireNoWorkspaces(t, wsRoot)
}

func TestCommitChangesAndHistory(t *testing.T) {
	service, _, wsRoot := setupService(t)
	ctx := context.Background()

	initSHA, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)

	files := map[string][]byte{
		"main.py":     []byte("print('hi')\n"),
		"lib/util.py": []byte("def helper(): pass\n"),
	}
	commitSHA, err := service.CommitChanges(ctx, testAppID, testStoragePath, files, testAuthor, "Add app code")
	require.NoError(t, err)
	require.NotEqual(t, initSHA, commitSHA)

	records, err := service.History(ctx, testAppID, testStoragePath, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, commitSHA, records[0].Hash)
	assert.Equal(t, "Add app code", records[0].Message)
	assert.Equal(t, testAuthor, records[0].Author)
	assert.Equal(t, []string{"lib/util.py", "main.py"}, records[0].Files)

	assert.Equal(t, initSHA, records[1].Hash)
	assert.Equal(t, []string{"README.md"}, records[1].Files)

	requireNoWorkspaces(t, wsRoot)
}

func TestHistoryLimit(t *testing.T) {
	service, _, _ := setupService(t)
	ctx := context.Background()

	_, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		files := map[string][]byte{"file.txt": []byte(fmt.Sprintf("rev %d\n", i))}
		_, err = service.CommitChanges(ctx, testAppID, testStoragePath, files, testAuthor, fmt.Sprintf("rev %d", i))
		require.NoError(t, err)
	}

	records, err := service.History(ctx, testAppID, testStoragePath, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	all, err := service.History(ctx, testAppID, testStoragePath, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCommitChangesNothingToCommit(t *testing.T) {
	service, _, wsRoot := setupService(t)
	ctx := context.Background()

	_, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)

	// Same starter file, same content: the staging area stays empty.
	same := map[string][]byte{"README.md": []byte(fmt.Sprintf("# %s\n", testAppID))}
	_, err = service.CommitChanges(ctx, testAppID, testStoragePath, same, testAuthor, "no-op")
	require.ErrorIs(t, err, ErrNothingToCommit)

	records, err := service.History(ctx, testAppID, testStoragePath, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1, "failed commit must not be recorded")

	requireNoWorkspaces(t, wsRoot)
}

func TestCommitChangesRejectsUnsafePaths(t *testing.T) {
	service, store, wsRoot := setupService(t)
	ctx := context.Background()

	bad := []string{
		"../evil",
		"/etc/passwd",
		".git/config",
		"a/../../b",
		"",
	}
	for _, p := range bad {
		files := map[string][]byte{p: []byte("x")}
		_, err := service.CommitChanges(ctx, testAppID, testStoragePath, files, testAuthor, "bad")
		assert.ErrorIs(t, err, ErrPathOutsideRoot, "path %q", p)
	}

	// One bad path poisons the whole change set before anything is written.
	mixed := map[string][]byte{
		"ok.txt":  []byte("fine"),
		"../evil": []byte("not fine"),
	}
	_, err := service.CommitChanges(ctx, testAppID, testStoragePath, mixed, testAuthor, "mixed")
	require.ErrorIs(t, err, ErrPathOutsideRoot)

	keys, err := store.List(ctx, "bucket", "")
	require.NoError(t, err)
	assert.Empty(t, keys, "no object may be written for rejected change sets")

	requireNoWorkspaces(t, wsRoot)
}

func TestCommitChangesUninitializedPath(t *testing.T) {
	service, _, wsRoot := setupService(t)
	ctx := context.Background()

	files := map[string][]byte{"main.py": []byte("print('hi')\n")}
	_, err := service.CommitChanges(ctx, testAppID, "bucket/apps/ghost", files, testAuthor, "orphan")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNothingToCommit)

	requireNoWorkspaces(t, wsRoot)
}

func TestUploadFailureReleasesWorkspaceAndRemote(t *testing.T) {
	store := &failingStore{MemoryStore: blobstore.NewMemoryStore()}
	wsRoot := filepath.Join(t.TempDir(), "workspaces")
	service := NewRepositoryService(store, NewWorkspaceManager(wsRoot, nil), nil)
	ctx := context.Background()

	_, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)

	store.failPuts = true
	files := map[string][]byte{"main.py": []byte("print('hi')\n")}
	_, err = service.CommitChanges(ctx, testAppID, testStoragePath, files, testAuthor, "doomed")
	require.Error(t, err)

	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "upload", syncErr.Op)

	requireNoWorkspaces(t, wsRoot)

	// The remote tree was never touched, so history still has one commit.
	store.failPuts = false
	records, err := service.History(ctx, testAppID, testStoragePath, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBranchInfo(t *testing.T) {
	service, _, wsRoot := setupService(t)
	ctx := context.Background()

	_, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)

	files := map[string][]byte{"main.py": []byte("print('hi')\n")}
	sha, err := service.CommitChanges(ctx, testAppID, testStoragePath, files, testAuthor, "Add entrypoint")
	require.NoError(t, err)

	info, err := service.BranchInfo(ctx, testAppID, testStoragePath)
	require.NoError(t, err)
	assert.Equal(t, DefaultBranch, info.CurrentBranch)
	require.NotNil(t, info.LastCommit)
	assert.Equal(t, sha, info.LastCommit.Hash)
	assert.Equal(t, []string{"main.py"}, info.LastCommit.Files)

	requireNoWorkspaces(t, wsRoot)
}

func TestBranchInfoNeverSynced(t *testing.T) {
	service, _, wsRoot := setupService(t)

	info, err := service.BranchInfo(context.Background(), "ghost", "bucket/apps/ghost")
	require.NoError(t, err)
	assert.Equal(t, DefaultBranch, info.CurrentBranch)
	assert.Nil(t, info.LastCommit)

	requireNoWorkspaces(t, wsRoot)
}

func TestDiffAndFiles(t *testing.T) {
	service, _, _ := setupService(t)
	ctx := context.Background()

	_, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)

	files := map[string][]byte{"src/main.py": []byte("print('hi')\n")}
	sha, err := service.CommitChanges(ctx, testAppID, testStoragePath, files, testAuthor, "Add entrypoint")
	require.NoError(t, err)

	patch, err := service.Diff(ctx, testAppID, testStoragePath, sha)
	require.NoError(t, err)
	assert.Contains(t, patch, "src/main.py")
	assert.NotContains(t, patch, "README.md")

	tracked, err := service.Files(ctx, testAppID, testStoragePath, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "src/main.py"}, tracked)
}

// Two writers racing on the same storage path: no locking exists, so both
// may succeed and the slower upload wins. The surviving chain must stay
// readable either way.
func TestConcurrentCommitsLastWriterWins(t *testing.T) {
	service, _, wsRoot := setupService(t)
	ctx := context.Background()

	_, err := service.Initialize(ctx, testAppID, testStoragePath, testAuthor)
	require.NoError(t, err)

	var g errgroup.Group
	for _, name := range []string{"from-a.txt", "from-b.txt"} {
		name := name
		g.Go(func() error {
			files := map[string][]byte{name: []byte(name + "\n")}
			_, err := service.CommitChanges(ctx, testAppID, testStoragePath, files, testAuthor, "race "+name)
			return err
		})
	}
	require.NoError(t, g.Wait())

	records, err := service.History(ctx, testAppID, testStoragePath, 0)
	require.NoError(t, err)
	require.Len(t, records, 2, "winner chain is the initial commit plus one racer")
	assert.Contains(t, []string{"race from-a.txt", "race from-b.txt"}, records[0].Message)

	requireNoWorkspaces(t, wsRoot)
}

func TestFullLifecycle(t *testing.T) {
	service, _, wsRoot := setupService(t)
	ctx := context.Background()

	initSHA, err := service.Initialize(ctx, "app-web", "bucket/apps/app-web/repo", testAuthor)
	require.NoError(t, err)

	_, err = service.CommitChanges(ctx, "app-web", "bucket/apps/app-web/repo", map[string][]byte{
		"main.py":     []byte("print('v1')\n"),
		"lib/util.py": []byte("def helper(): pass\n"),
	}, testAuthor, "Add app code")
	require.NoError(t, err)

	tipSHA, err := service.CommitChanges(ctx, "app-web", "bucket/apps/app-web/repo", map[string][]byte{
		"main.py": []byte("print('v2')\n"),
	}, testAuthor, "Bump version")
	require.NoError(t, err)

	records, err := service.History(ctx, "app-web", "bucket/apps/app-web/repo", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, tipSHA, records[0].Hash)
	assert.Equal(t, []string{"main.py"}, records[0].Files)
	assert.Equal(t, []string{"lib/util.py", "main.py"}, records[1].Files)
	assert.Equal(t, initSHA, records[2].Hash)

	info, err := service.BranchInfo(ctx, "app-web", "bucket/apps/app-web/repo")
	require.NoError(t, err)
	require.NotNil(t, info.LastCommit)
	assert.Equal(t, tipSHA, info.LastCommit.Hash)

	tracked, err := service.Files(ctx, "app-web", "bucket/apps/app-web/repo", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "lib/util.py", "main.py"}, tracked)

	requireNoWorkspaces(t, wsRoot)
}
