// ABOUTME: File-backed persistence for the bearer credential.
// ABOUTME: Absence of the token file is the logged-out state.
package session

import (
	"os"
	"path/filepath"
	"strings"
)

// Store persists the bearer credential in a single file. Every read goes to
// disk so callers always observe the latest login/logout, and writes replace
// the file wholesale.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Token returns the persisted credential and whether one exists. It satisfies
// the api client's TokenProvider.
func (s *Store) Token() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}

// Save replaces the persisted credential.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0600)
}

// Clear removes the persisted credential unconditionally. A missing file is
// not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
