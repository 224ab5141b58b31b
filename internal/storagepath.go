package internal

import (
	"fmt"
	"path"
	"strings"
)

// StorageLocation addresses one repository inside the object store: the
// bucket plus the key prefix all of its metadata objects live under.
type StorageLocation struct {
	Bucket string
	Prefix string
}

func (l StorageLocation) String() string {
	return l.Bucket + "/" + l.Prefix
}

// ParseStoragePath splits a logical storage path such as
// "bucket/apps/app-123/repo" into bucket and key prefix. The first segment
// is the bucket, everything after it the prefix; a path with fewer than two
// segments has no prefix and is rejected.
func ParseStoragePath(storagePath string) (StorageLocation, error) {
	trimmed := strings.Trim(storagePath, "/")
	if trimmed == "" {
		return StorageLocation{}, fmt.Errorf("%w: %q", ErrInvalidStoragePath, storagePath)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return StorageLocation{}, fmt.Errorf("%w: %q has no key prefix", ErrInvalidStoragePath, storagePath)
	}
	prefix := path.Clean(strings.Trim(parts[1], "/"))
	if prefix == "" || prefix == "." || prefix == ".." || strings.HasPrefix(prefix, "../") {
		return StorageLocation{}, fmt.Errorf("%w: %q has no usable key prefix", ErrInvalidStoragePath, storagePath)
	}
	return StorageLocation{Bucket: parts[0], Prefix: prefix}, nil
}
