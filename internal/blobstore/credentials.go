package blobstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// expirySkew is subtracted from the stated expiry when deciding staleness.
const expirySkew = 2 * time.Minute

// Credentials is one set of object-store access credentials, possibly
// short-lived.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiry          time.Time
}

// Valid reports whether the credentials are usable at the given instant.
// A zero Expiry means they never lapse.
func (c Credentials) Valid(now time.Time) bool {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return false
	}
	if c.Expiry.IsZero() {
		return true
	}
	return now.Before(c.Expiry.Add(-expirySkew))
}

// CredentialSource produces fresh credentials on demand.
type CredentialSource func(ctx context.Context) (Credentials, error)

// StaticCredentials returns a source that always hands out the same
// non-expiring key pair.
func StaticCredentials(accessKeyID, secretAccessKey string) CredentialSource {
	return func(ctx context.Context) (Credentials, error) {
		return Credentials{AccessKeyID: accessKeyID, SecretAccessKey: secretAccessKey}, nil
	}
}

// CredentialCache holds the current credentials for a store backend and
// pulls new ones through its source when they go stale. Safe for concurrent
// use.
type CredentialCache struct {
	mu      sync.Mutex
	source  CredentialSource
	current Credentials
	now     func() time.Time
}

func NewCredentialCache(source CredentialSource) *CredentialCache {
	return &CredentialCache{source: source, now: time.Now}
}

// IsValid reports whether the cached credentials are still usable.
func (c *CredentialCache) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Valid(c.now())
}

// Refresh unconditionally pulls new credentials from the source.
func (c *CredentialCache) Refresh(ctx context.Context) (Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// Get returns the cached credentials, refreshing first when they are missing
// or stale.
func (c *CredentialCache) Get(ctx context.Context) (Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.Valid(c.now()) {
		return c.current, nil
	}
	return c.refreshLocked(ctx)
}

func (c *CredentialCache) refreshLocked(ctx context.Context) (Credentials, error) {
	creds, err := c.source(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("refresh credentials: %w", err)
	}
	if !creds.Valid(c.now()) {
		return Credentials{}, fmt.Errorf("credential source returned stale credentials")
	}
	c.current = creds
	return creds, nil
}
