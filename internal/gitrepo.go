package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	DefaultBranch = "main"
	gitDirName    = ".git"
)

// GitRepository wraps a go-git repository whose metadata lives in the .git
// directory of a workspace and whose worktree is the workspace itself.
type GitRepository struct {
	repo     *git.Repository
	worktree *git.Worktree
	rootPath string
}

func InitGitRepository(rootPath string) (*GitRepository, error) {
	gitDir := filepath.Join(rootPath, gitDirName)
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		return nil, fmt.Errorf("create metadata directory: %w", err)
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(rootPath)

	repo, err := git.InitWithOptions(storage, wt, git.InitOptions{
		DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
	})
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &GitRepository{repo: repo, worktree: worktree, rootPath: rootPath}, nil
}

func OpenGitRepository(rootPath string) (*GitRepository, error) {
	fs := osfs.New(filepath.Join(rootPath, gitDirName))
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(rootPath)

	repo, err := git.Open(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &GitRepository{repo: repo, worktree: worktree, rootPath: rootPath}, nil
}

func (r *GitRepository) GitDir() string {
	return filepath.Join(r.rootPath, gitDirName)
}

// WriteFile puts content into the worktree without staging it.
func (r *GitRepository) WriteFile(relPath string, content []byte) error {
	dst := filepath.Join(r.rootPath, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(dst, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (r *GitRepository) Stage(relPath string) error {
	if _, err := r.worktree.Add(relPath); err != nil {
		return fmt.Errorf("stage file: %w", err)
	}
	return nil
}

// StagedCount counts the paths whose staged state differs from HEAD. Writing
// an unchanged file and staging it leaves the count untouched.
func (r *GitRepository) StagedCount() (int, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return 0, fmt.Errorf("get status: %w", err)
	}
	count := 0
	for _, s := range status {
		switch s.Staging {
		case git.Added, git.Modified, git.Deleted:
			count++
		}
	}
	return count, nil
}

func (r *GitRepository) Commit(message string, author Author) (string, error) {
	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}

// CurrentBranch returns the branch HEAD points at. An unreadable or detached
// HEAD falls back to the default branch name.
func (r *GitRepository) CurrentBranch() string {
	ref, err := r.repo.Reference(plumbing.HEAD, false)
	if err == nil && ref.Type() == plumbing.SymbolicReference {
		return ref.Target().Short()
	}
	return DefaultBranch
}

// LastCommit returns the record HEAD points at, or nil on an unborn branch.
func (r *GitRepository) LastCommit(ctx context.Context) (*CommitRecord, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("get HEAD commit: %w", err)
	}

	record, err := r.toRecord(ctx, commit)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GitRepository) Log(ctx context.Context, limit int) ([]CommitRecord, error) {
	iter, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var records []CommitRecord
	count := 0

	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && count >= limit {
			return io.EOF
		}
		record, err := r.toRecord(ctx, c)
		if err != nil {
			return err
		}
		records = append(records, record)
		count++
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return records, nil
}

// PatchText renders the unified diff a revision introduced over its first
// parent. The root commit diffs against the empty tree.
func (r *GitRepository) PatchText(ctx context.Context, rev string) (string, error) {
	commit, err := r.resolveCommit(rev)
	if err != nil {
		return "", err
	}

	tree, err := commit.Tree()
	if err != nil {
		return "", fmt.Errorf("get tree: %w", err)
	}

	var parentTree *object.Tree
	parent, err := commit.Parent(0)
	if err != nil && !errors.Is(err, object.ErrParentNotFound) {
		return "", fmt.Errorf("get parent: %w", err)
	}
	if err == nil {
		parentTree, err = parent.Tree()
		if err != nil {
			return "", fmt.Errorf("get parent tree: %w", err)
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, nil)
	if err != nil {
		return "", fmt.Errorf("diff trees: %w", err)
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", fmt.Errorf("get patch: %w", err)
	}
	return patch.String(), nil
}

// FilesAtRevision lists every path tracked at a revision.
func (r *GitRepository) FilesAtRevision(ctx context.Context, rev string) ([]string, error) {
	commit, err := r.resolveCommit(rev)
	if err != nil {
		return nil, err
	}
	return treeFiles(commit)
}

func (r *GitRepository) resolveCommit(rev string) (*object.Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}
	resolved, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*resolved)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}
	return commit, nil
}

// helpers

func (r *GitRepository) toRecord(ctx context.Context, c *object.Commit) (CommitRecord, error) {
	files, err := r.changedFiles(ctx, c)
	if err != nil {
		return CommitRecord{}, err
	}
	return CommitRecord{
		Hash:    c.Hash.String(),
		Message: strings.TrimSpace(c.Message),
		Author:  Author{Name: c.Author.Name, Email: c.Author.Email},
		Date:    c.Author.When,
		Files:   files,
	}, nil
}

// changedFiles lists the paths a commit touched relative to its first
// parent. When no parent diff can be produced, either for the root commit or
// for a parent missing from a partially synced object set, it falls back to
// every path tracked at the commit.
func (r *GitRepository) changedFiles(ctx context.Context, c *object.Commit) ([]string, error) {
	changes, err := r.parentDiff(ctx, c)
	if err != nil {
		return treeFiles(c)
	}

	seen := make(map[string]bool, len(changes))
	var files []string
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			name = ch.From.Name
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (r *GitRepository) parentDiff(ctx context.Context, c *object.Commit) (object.Changes, error) {
	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	return object.DiffTreeWithOptions(ctx, parentTree, tree, nil)
}

func treeFiles(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tree files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
