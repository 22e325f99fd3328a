package client

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicToken(t *testing.T) {
	token := BasicToken("alice", "s3cret")
	decoded, err := base64.StdEncoding.DecodeString(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice:s3cret", string(decoded))
}

func TestCredentialStorePrecedence(t *testing.T) {
	s := NewCredentialStore("dev", "devpass")
	assert.False(t, s.HasSession())
	assert.Equal(t, "Basic "+BasicToken("dev", "devpass"), s.Header())

	s.Login("alice", "s3cret")
	assert.True(t, s.HasSession())
	assert.Equal(t, "Basic "+BasicToken("alice", "s3cret"), s.Header())

	// Logout drops the session but keeps the dev fallback.
	s.Logout()
	assert.False(t, s.HasSession())
	assert.Equal(t, "Basic "+BasicToken("dev", "devpass"), s.Header())
}

func TestCredentialStoreNoFallback(t *testing.T) {
	s := NewCredentialStore("", "")
	assert.Equal(t, "", s.Header())

	s.Login("alice", "s3cret")
	assert.NotEqual(t, "", s.Header())
	s.Logout()
	assert.Equal(t, "", s.Header())
}
