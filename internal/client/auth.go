// internal/client/auth.go
package client

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// BasicToken encodes a user/password pair for a Basic Authorization
// header.
func BasicToken(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

// CredentialStore holds the session credential the client attaches to
// every request. The session token (set at login, cleared at logout)
// wins over the configured fallback credential, which exists for local
// development only. With neither set, requests go out unauthenticated
// and the backend answers 401.
type CredentialStore struct {
	mu       sync.RWMutex
	token    string
	fallback string
}

// NewCredentialStore builds a store with an optional dev fallback
// credential. Empty user disables the fallback.
func NewCredentialStore(devUser, devPass string) *CredentialStore {
	s := &CredentialStore{}
	if devUser != "" {
		s.fallback = BasicToken(devUser, devPass)
	}
	return s
}

// Login stores the session credential.
func (s *CredentialStore) Login(user, pass string) {
	s.SetToken(BasicToken(user, pass))
}

// SetToken stores an already-encoded session token.
func (s *CredentialStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Logout clears the session credential. The fallback, if configured,
// remains in effect.
func (s *CredentialStore) Logout() {
	s.SetToken("")
}

// HasSession reports whether a session credential is set.
func (s *CredentialStore) HasSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Header returns the Authorization header value to attach, or "" when
// no credential is available.
func (s *CredentialStore) Header() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token != "" {
		return "Basic " + s.token
	}
	if s.fallback != "" {
		return "Basic " + s.fallback
	}
	return ""
}

const sessionFileName = "session"

func sessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "compost-console", sessionFileName), nil
}

// SaveSessionToken persists the session token for later CLI
// invocations.
func SaveSessionToken(token string) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// LoadSessionToken reads a previously saved session token. Returns ""
// when none exists.
func LoadSessionToken() (string, error) {
	path, err := sessionPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ClearSessionToken removes the saved session token.
func ClearSessionToken() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
