// Package quickdial provides the embedded contact roster and an overlay
// filesystem that checks local disk first, falling back to embedded.
package quickdial

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/smileynet/quickdial/internal/contact"
)

// RosterFile is the roster file name inside the contacts filesystem.
const RosterFile = "contacts.yaml"

//go:embed contacts/contacts.yaml
var rawContacts embed.FS

// Contacts is the embedded contacts filesystem with the "contacts/" prefix stripped.
var Contacts = mustSub(rawContacts, "contacts")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadCatalog resolves a roster file. An empty path reads RosterFile through
// OverlayFS("contacts", Contacts); any other path is read from disk.
func LoadCatalog(path string) (*contact.Catalog, error) {
	if path == "" {
		return contact.LoadCatalog(OverlayFS("contacts", Contacts), RosterFile)
	}
	return contact.LoadCatalog(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}
