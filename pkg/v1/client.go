package v1

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/4thel00z/gitstow/internal"
)

// Errors operations can return, testable with errors.Is.
var (
	ErrNothingToCommit    = internal.ErrNothingToCommit
	ErrInvalidStoragePath = internal.ErrInvalidStoragePath
	ErrPathOutsideRoot    = internal.ErrPathOutsideRoot
)

// Client provides programmatic access to repositories kept in a blob store.
type Client struct {
	service *internal.RepositoryService
	author  internal.Author
	closer  func() error
}

// New creates a new Client with the given options. The context covers store
// construction only, not the client's lifetime.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		store:  internal.StoreConfig{Backend: internal.BackendMemory},
		author: Author{Name: "gitstow", Email: "gitstow@local"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, closer, err := internal.OpenStore(ctx, &internal.Config{Store: cfg.store})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	workspaces := internal.NewWorkspaceManager(cfg.workspaceRoot, logger)
	return &Client{
		service: internal.NewRepositoryService(store, workspaces, logger),
		author:  internal.Author{Name: cfg.author.Name, Email: cfg.author.Email},
		closer:  closer,
	}, nil
}

// Initialize creates a repository for an application at the storage path and
// returns the initial commit hash.
func (c *Client) Initialize(ctx context.Context, appID, storagePath string, author Author) (string, error) {
	return c.service.Initialize(ctx, appID, storagePath, c.resolveAuthor(author))
}

// Commit records the given files as one commit and returns its hash. The map
// holds repository-relative paths and their full contents.
func (c *Client) Commit(ctx context.Context, appID, storagePath string, files map[string][]byte, author Author, message string) (string, error) {
	return c.service.CommitChanges(ctx, appID, storagePath, files, c.resolveAuthor(author), message)
}

// History returns commits newest first. A limit of zero or less returns the
// full history.
func (c *Client) History(ctx context.Context, appID, storagePath string, limit int) ([]Commit, error) {
	records, err := c.service.History(ctx, appID, storagePath, limit)
	if err != nil {
		return nil, err
	}
	commits := make([]Commit, 0, len(records))
	for _, rec := range records {
		commits = append(commits, toCommit(rec))
	}
	return commits, nil
}

// BranchInfo reports the current branch and its head commit.
func (c *Client) BranchInfo(ctx context.Context, appID, storagePath string) (*BranchInfo, error) {
	info, err := c.service.BranchInfo(ctx, appID, storagePath)
	if err != nil {
		return nil, err
	}
	out := &BranchInfo{CurrentBranch: info.CurrentBranch}
	if info.LastCommit != nil {
		last := toCommit(*info.LastCommit)
		out.LastCommit = &last
	}
	return out, nil
}

// Diff renders the unified diff a revision introduced. An empty revision
// means HEAD.
func (c *Client) Diff(ctx context.Context, appID, storagePath, revision string) (string, error) {
	return c.service.Diff(ctx, appID, storagePath, revision)
}

// Files lists every path tracked at a revision. An empty revision means HEAD.
func (c *Client) Files(ctx context.Context, appID, storagePath, revision string) ([]string, error) {
	return c.service.Files(ctx, appID, storagePath, revision)
}

// Close releases any resources held by the client's store.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) resolveAuthor(author Author) internal.Author {
	if author == (Author{}) {
		return c.author
	}
	return internal.Author{Name: author.Name, Email: author.Email}
}

func toCommit(rec internal.CommitRecord) Commit {
	return Commit{
		Hash:    rec.Hash,
		Message: rec.Message,
		Author:  Author{Name: rec.Author.Name, Email: rec.Author.Email},
		Date:    rec.Date,
		Files:   rec.Files,
	}
}
