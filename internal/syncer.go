package internal

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/4thel00z/gitstow/internal/blobstore"
	"go.uber.org/zap"
)

// TreeSyncer copies a whole metadata tree between a local directory and an
// object-store prefix, file by file. It has no notion of git: every regular
// file below the local root becomes one object, and vice versa.
type TreeSyncer struct {
	store  blobstore.Store
	logger *zap.Logger
}

func NewTreeSyncer(store blobstore.Store, logger *zap.Logger) *TreeSyncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeSyncer{store: store, logger: logger}
}

// Upload walks localDir and writes every regular file to the store under
// prefix. Uploads are not transactional: a failure part way through leaves
// the objects written so far in place.
func (s *TreeSyncer) Upload(ctx context.Context, localDir, bucket, prefix string) error {
	count := 0
	err := filepath.Walk(localDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", p, err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		key := path.Join(prefix, filepath.ToSlash(rel))
		if err := s.store.Put(ctx, bucket, key, data); err != nil {
			return fmt.Errorf("write object %s: %w", key, err)
		}
		count++
		return nil
	})
	if err != nil {
		return &SyncError{Op: "upload", Target: bucket + "/" + prefix, Err: err}
	}
	s.logger.Debug("uploaded tree",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("objects", count))
	return nil
}

// Download materializes every object under prefix as a file below localDir.
// An empty prefix is not an error: the directory is created and left empty,
// which is exactly the state before a repository's first upload.
func (s *TreeSyncer) Download(ctx context.Context, bucket, prefix, localDir string) error {
	target := bucket + "/" + prefix
	if err := os.MkdirAll(localDir, 0755); err != nil {
		return &SyncError{Op: "download", Target: target, Err: fmt.Errorf("create local dir: %w", err)}
	}
	keys, err := s.store.List(ctx, bucket, prefix)
	if err != nil {
		return &SyncError{Op: "download", Target: target, Err: fmt.Errorf("list objects: %w", err)}
	}
	count := 0
	for _, key := range keys {
		rel, ok := relativeKey(key, prefix)
		if !ok {
			continue
		}
		data, err := s.store.Get(ctx, bucket, key)
		if err != nil {
			return &SyncError{Op: "download", Target: target, Err: fmt.Errorf("read object %s: %w", key, err)}
		}
		dst := filepath.Join(localDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return &SyncError{Op: "download", Target: target, Err: fmt.Errorf("create dir for %s: %w", rel, err)}
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return &SyncError{Op: "download", Target: target, Err: fmt.Errorf("write %s: %w", rel, err)}
		}
		count++
	}
	s.logger.Debug("downloaded tree",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("objects", count))
	return nil
}

// relativeKey strips prefix from key and reports whether the remainder is a
// usable relative file path. Skipped: directory markers (keys ending in a
// separator), the bare prefix itself, and neighbours that share prefix as a
// string but not as a key-path boundary ("apps/a10/..." under "apps/a1").
func relativeKey(key, prefix string) (string, bool) {
	if key == "" || strings.HasSuffix(key, "/") {
		return "", false
	}
	rel := strings.TrimPrefix(key, prefix)
	if len(rel) == len(key) && prefix != "" {
		return "", false
	}
	if prefix != "" {
		if rel == "" || rel[0] != '/' {
			return "", false
		}
		rel = rel[1:]
	}
	if rel == "" {
		return "", false
	}
	rel = path.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", false
	}
	return rel, true
}
