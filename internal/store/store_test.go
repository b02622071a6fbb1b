package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smileynet/quickdial/internal/selection"
)

// backends returns a fresh instance of every persistent backend rooted in a temp dir.
func backends(t *testing.T) map[string]func() Store {
	t.Helper()
	dir := t.TempDir()
	return map[string]func() Store{
		BackendFile: func() Store {
			s, err := Open(BackendFile, filepath.Join(dir, "file", "state.json"))
			if err != nil {
				t.Fatal(err)
			}
			return s
		},
		BackendSQLite: func() Store {
			s, err := Open(BackendSQLite, filepath.Join(dir, "sqlite", "state.db"))
			if err != nil {
				t.Fatal(err)
			}
			return s
		},
	}
}

func TestStore_SetAndGet(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Given: an empty store
			s := open()
			defer func() { _ = s.Close() }()

			// When: a key is written
			if err := s.Set(selection.Key, "3"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			// Then: Get returns the value
			v, found, err := s.Get(selection.Key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !found || v != "3" {
				t.Errorf("Get() = %q, %v; want %q, true", v, found, "3")
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer func() { _ = s.Close() }()

			_, found, err := s.Get("absent")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if found {
				t.Error("Get(absent) found = true, want false")
			}
		})
	}
}

func TestStore_OverwriteAndSurviveReopen(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Given: a key written twice
			s := open()
			if err := s.Set(selection.Key, "2"); err != nil {
				t.Fatal(err)
			}
			if err := s.Set(selection.Key, "3"); err != nil {
				t.Fatal(err)
			}
			_ = s.Close()

			// When: the store is reopened
			reopened := open()
			defer func() { _ = reopened.Close() }()

			// Then: the last value survives
			v, found, err := reopened.Get(selection.Key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !found || v != "3" {
				t.Errorf("Get() after reopen = %q, %v; want %q, true", v, found, "3")
			}
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	all := backends(t)
	all[BackendMemory] = func() Store { return nopCloser{NewMemoryStore()} }

	for name, open := range all {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer func() { _ = s.Close() }()

			for _, key := range []string{"", "has space", "tab\tkey", "nl\n"} {
				if err := s.Set(key, "1"); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Set(%q) error = %v, want ErrInvalidKey", key, err)
				}
				if _, _, err := s.Get(key); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Get(%q) error = %v, want ErrInvalidKey", key, err)
				}
			}
		})
	}
}

func TestFileStore_PreservesOtherKeys(t *testing.T) {
	// Given: a file that already holds an unrelated key
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	// When: the selection key is written
	if err := s.Set(selection.Key, "2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Then: the unrelated key is still there
	v, found, err := s.Get("theme")
	if err != nil || !found || v != "dark" {
		t.Errorf("Get(theme) = %q, %v, %v; want dark, true, nil", v, found, err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	// Given: a state file truncated mid-write
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{trunc"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	// When/Then: reads report the corruption
	if _, _, err := s.Get(selection.Key); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get() error = %v, want ErrCorrupt", err)
	}

	// And: a write replaces the unreadable file
	if err := s.Set(selection.Key, "1"); err != nil {
		t.Fatalf("Set() on corrupt file error = %v", err)
	}
	v, found, err := s.Get(selection.Key)
	if err != nil || !found || v != "1" {
		t.Errorf("Get() after repair = %q, %v, %v; want 1, true, nil", v, found, err)
	}
}

func TestController_SelectRepairsCorruptFile(t *testing.T) {
	// Given: a controller over a corrupt state file
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{trunc"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctrl := selection.NewController(NewFileStore(path))

	// When: initialization fails as a read error
	var se *selection.StoreError
	if err := ctrl.Initialize(); !errors.As(err, &se) || se.Op != "read" {
		t.Fatalf("Initialize() error = %v, want read StoreError", err)
	}

	// Then: selecting still succeeds and a fresh controller restores it
	if err := ctrl.Select(3); err != nil {
		t.Fatalf("Select(3) error = %v", err)
	}
	restored := selection.NewController(NewFileStore(path))
	if err := restored.Initialize(); err != nil {
		t.Fatalf("Initialize() after repair error = %v", err)
	}
	if restored.State() != selection.Active(3) {
		t.Errorf("State() = %v, want Active(3)", restored.State())
	}
}

func TestFileStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, found, err := NewFileStore(path).Get(selection.Key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() on empty file found = true, want false")
	}
}

func TestFileStore_UnwritableDirectory(t *testing.T) {
	// Given: a path whose parent is a regular file
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(filepath.Join(blocker, "state.json"))

	// When/Then: Set fails rather than silently dropping the value
	if err := s.Set(selection.Key, "1"); err == nil {
		t.Fatal("Set() under a file should return error")
	}
}

func TestSQLiteStore_PathWithURIMetacharacters(t *testing.T) {
	// Given: a database path containing characters that are special in URIs
	path := filepath.Join(t.TempDir(), "odd?dir#1", "state 100%.db")

	// When: a value is written and the database reopened
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Set(selection.Key, "5"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	// Then: the file lives at the literal path and keeps the value
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database at %s: %v", path, err)
	}
	v, found, err := reopened.Get(selection.Key)
	if err != nil || !found || v != "5" {
		t.Errorf("Get() = %q, %v, %v; want 5, true, nil", v, found, err)
	}
}

func TestMemoryStore_DoesNotPersistAcrossInstances(t *testing.T) {
	a := NewMemoryStore()
	_ = a.Set(selection.Key, "4")

	b := NewMemoryStore()
	if _, found, _ := b.Get(selection.Key); found {
		t.Error("new MemoryStore should be empty")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("etcd", "/tmp/x")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(etcd) error = %v, want ErrUnknownBackend", err)
	}
}

func TestOpen_EmptyBackendIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open("", path)
	if err != nil {
		t.Fatalf("Open(\"\") error = %v", err)
	}
	if err := s.Set(selection.Key, "8"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}

func TestController_RoundTripThroughFileStore(t *testing.T) {
	// Given: a controller that selected id 3 against a file store
	path := filepath.Join(t.TempDir(), "state.json")
	first := selection.NewController(NewFileStore(path))
	if err := first.Select(3); err != nil {
		t.Fatal(err)
	}

	// When: a new process-equivalent controller initializes from the same file
	second := selection.NewController(NewFileStore(path))
	if err := second.Initialize(); err != nil {
		t.Fatal(err)
	}

	// Then: the selection is restored
	if second.State() != selection.Active(3) {
		t.Errorf("State() = %v, want Active(3)", second.State())
	}
}
