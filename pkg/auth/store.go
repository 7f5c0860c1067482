// Package auth manages the client-side credential lifecycle: login against
// the platform, token persistence, and expiry inspection for JWT tokens.
package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agentflow-ai/agentflow-go/pkg/logx"
)

// FileStore persists the bearer token in a mode-0600 file. It satisfies
// the client.CredentialSource interface; Clear is invoked by the base
// client on any 401 response.
type FileStore struct {
	path  string
	mu    sync.Mutex
	token string
}

// NewFileStore creates a store backed by path, loading any existing token.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		s.token = strings.TrimSpace(string(raw))
	case os.IsNotExist(err):
	default:
		return nil, errorRegistry.WrapWith(ErrStore, err)
	}
	return s, nil
}

// Token returns the stored token, or "" when logged out.
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Save stores a new token in memory and on disk.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errorRegistry.WrapWith(ErrStore, err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return errorRegistry.WrapWith(ErrStore, err)
	}
	return nil
}

// Clear drops the credential from memory and disk.
func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		logx.WithError(err).Warn("could not remove token file")
	}
}

// MemoryStore is an in-process credential source for tests and embedding.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates a store holding the given token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Token returns the stored token.
func (s *MemoryStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Save replaces the stored token.
func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear drops the stored token.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
