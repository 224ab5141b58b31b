package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/4thel00z/gitstow/internal/blobstore"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory     = "memory"
	BackendFilesystem = "fs"
	BackendBadger     = "badger"
	BackendS3         = "s3"
)

type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Root is the object directory for the fs backend.
	Root string `yaml:"root,omitempty"`
	// Dir is the database directory for the badger backend.
	Dir string `yaml:"dir,omitempty"`

	S3              blobstore.S3Config `yaml:"s3,omitempty"`
	AccessKeyID     string             `yaml:"access_key_id,omitempty"`
	SecretAccessKey string             `yaml:"secret_access_key,omitempty"`
}

type AuthorConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Config struct {
	Store    StoreConfig  `yaml:"store"`
	Author   AuthorConfig `yaml:"author"`
	LogLevel string       `yaml:"log_level,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Author: AuthorConfig{
			Name:  "gitstow",
			Email: "gitstow@local",
		},
		LogLevel: "warn",
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// DefaultConfigPath places the config under the user config directory.
func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "gitstow.yaml"
	}
	return filepath.Join(base, "gitstow", "config.yaml")
}

// OpenStore builds the configured store backend. The returned closer must be
// called when the store is no longer needed; for most backends it is a no-op.
func OpenStore(ctx context.Context, cfg *Config) (blobstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case "", BackendMemory:
		return blobstore.NewMemoryStore(), noop, nil

	case BackendFilesystem:
		store, err := blobstore.NewFilesystemStore(cfg.Store.Root)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case BackendBadger:
		store, err := blobstore.NewBadgerStore(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case BackendS3:
		var creds *blobstore.CredentialCache
		if cfg.Store.AccessKeyID != "" {
			source := blobstore.StaticCredentials(cfg.Store.AccessKeyID, cfg.Store.SecretAccessKey)
			creds = blobstore.NewCredentialCache(source)
		}
		store, err := blobstore.NewS3Store(ctx, cfg.Store.S3, creds)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
