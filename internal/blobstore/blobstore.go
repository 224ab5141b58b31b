// Package blobstore defines the narrow object-store surface the repository
// sync layer needs, plus the backends that provide it.
package blobstore

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Get for keys with no stored object.
var ErrObjectNotFound = errors.New("object not found")

// Store is the capability the sync layer requires from an object store:
// flat keys inside named buckets, listable by prefix. Implementations must
// be safe for concurrent use.
type Store interface {
	// List returns the keys under prefix in lexical order. A prefix with no
	// objects yields an empty slice, not an error.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	// Get reads one object. Missing keys yield ErrObjectNotFound.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Put writes one object, replacing any previous content.
	Put(ctx context.Context, bucket, key string, data []byte) error
}
