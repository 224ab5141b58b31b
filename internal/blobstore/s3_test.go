package blobstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialProviderRetrieve(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	cache := NewCredentialCache(func(ctx context.Context) (Credentials, error) {
		return Credentials{
			AccessKeyID:     "AKIA",
			SecretAccessKey: "secret",
			SessionToken:    "token",
			Expiry:          expiry,
		}, nil
	})

	creds, err := credentialProvider{cache: cache}.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
	assert.Equal(t, "token", creds.SessionToken)
	assert.True(t, creds.CanExpire)
	assert.True(t, creds.Expires.Equal(expiry))
}

func TestCredentialProviderStaticNeverExpires(t *testing.T) {
	cache := NewCredentialCache(StaticCredentials("AKIA", "secret"))

	creds, err := credentialProvider{cache: cache}.Retrieve(context.Background())
	require.NoError(t, err)
	assert.False(t, creds.CanExpire)
}

func TestCredentialProviderPropagatesErrors(t *testing.T) {
	broken := errors.New("sts unavailable")
	cache := NewCredentialCache(func(ctx context.Context) (Credentials, error) {
		return Credentials{}, broken
	})

	_, err := credentialProvider{cache: cache}.Retrieve(context.Background())
	assert.ErrorIs(t, err, broken)
}
