package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/smileynet/quickdial/internal/selection"
)

// Compile-time checks: every backend satisfies selection.Store.
var (
	_ selection.Store = (*FileStore)(nil)
	_ selection.Store = (*SQLiteStore)(nil)
	_ selection.Store = (*MemoryStore)(nil)
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for unrecognized backend names.
var ErrUnknownBackend = errors.New("store: unknown backend")

// Store is a selection.Store that may hold resources needing release.
type Store interface {
	selection.Store
	io.Closer
}

// Open returns the backend named by backend, rooted at path.
// path is ignored for the memory backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return nopCloser{NewFileStore(path)}, nil
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return nopCloser{NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

type nopCloser struct {
	selection.Store
}

func (nopCloser) Close() error { return nil }

// MemoryStore keeps keys in process memory. Values do not survive restart.
type MemoryStore struct {
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.data[key] = value
	return nil
}
