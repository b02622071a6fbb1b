// Package store implements the durable key-value backends behind the
// active-driver selection.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidKey indicates a key is empty or contains whitespace or control characters.
var ErrInvalidKey = errors.New("store: invalid key")

// ErrCorrupt indicates the backing file exists but is not a JSON object of strings.
var ErrCorrupt = errors.New("store: corrupt state file")

// FileStore persists all keys as a single JSON object in one file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by the JSON file at path.
// The file and its parent directories are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
// Returns ("", false, nil) when the file or key does not exist.
func (s *FileStore) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set writes value under key, preserving other keys in the file.
// A corrupt file is replaced by one holding only key.
func (s *FileStore) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := s.load()
	if errors.Is(err, ErrCorrupt) {
		data = map[string]string{}
	} else if err != nil {
		return err
	}
	data[key] = value

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("store: creating directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshaling: %w", err)
	}

	// Write to a sibling temp file, then rename into place.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: replacing %s: %w", s.path, err)
	}
	return nil
}

// load reads the backing file. A missing or empty file yields an empty map.
func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]string{}, nil
	}

	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrCorrupt, s.path, err)
	}
	return data, nil
}

// validateKey rejects empty keys and keys containing whitespace or control characters.
func validateKey(key string) error {
	if key == "" || strings.ContainsFunc(key, func(r rune) bool { return r <= ' ' || r == 0x7f }) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
