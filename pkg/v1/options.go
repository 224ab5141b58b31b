package v1

import (
	"go.uber.org/zap"

	"github.com/4thel00z/gitstow/internal"
	"github.com/4thel00z/gitstow/internal/blobstore"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	store         internal.StoreConfig
	author        Author
	logger        *zap.Logger
	workspaceRoot string
}

// WithMemoryStore keeps every object in process memory. This is the default
// backend; state is lost when the client goes away.
func WithMemoryStore() Option {
	return func(c *clientConfig) {
		c.store = internal.StoreConfig{Backend: internal.BackendMemory}
	}
}

// WithFilesystemStore keeps objects as plain files under root.
func WithFilesystemStore(root string) Option {
	return func(c *clientConfig) {
		c.store = internal.StoreConfig{Backend: internal.BackendFilesystem, Root: root}
	}
}

// WithBadgerStore keeps objects in a compressed badger database under dir.
func WithBadgerStore(dir string) Option {
	return func(c *clientConfig) {
		c.store = internal.StoreConfig{Backend: internal.BackendBadger, Dir: dir}
	}
}

// WithS3Store keeps objects in an S3-compatible bucket.
func WithS3Store(cfg S3Config) Option {
	return func(c *clientConfig) {
		c.store = internal.StoreConfig{
			Backend: internal.BackendS3,
			S3: blobstore.S3Config{
				Region:       cfg.Region,
				Endpoint:     cfg.Endpoint,
				UsePathStyle: cfg.UsePathStyle,
			},
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		}
	}
}

// WithAuthor sets the author used when an operation passes a zero Author.
func WithAuthor(author Author) Option {
	return func(c *clientConfig) {
		c.author = author
	}
}

// WithLogger routes the client's logging to the given logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithWorkspaceRoot sets the directory scratch checkouts are created under.
// Defaults to the system temp directory.
func WithWorkspaceRoot(dir string) Option {
	return func(c *clientConfig) {
		c.workspaceRoot = dir
	}
}
