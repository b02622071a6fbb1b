package contact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// roster is the on-disk shape of a catalog file.
type roster struct {
	Contacts []Contact `yaml:"contacts" toml:"contacts"`
}

// LoadCatalog reads a roster named name from fsys. Names ending in .toml are
// decoded as TOML, anything else as YAML. Unknown fields are rejected.
// An empty roster yields an empty catalog.
func LoadCatalog(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("contact: reading %s: %w", name, err)
	}
	if strings.EqualFold(path.Ext(name), ".toml") {
		return ParseCatalogTOML(data)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML roster.
func ParseCatalog(data []byte) (*Catalog, error) {
	var r roster
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("contact: parsing roster: %w", err)
	}
	return NewCatalog(r.Contacts...)
}

// ParseCatalogTOML decodes a TOML roster of [[contacts]] tables.
func ParseCatalogTOML(data []byte) (*Catalog, error) {
	var r roster
	md, err := toml.Decode(string(data), &r)
	if err != nil {
		return nil, fmt.Errorf("contact: parsing roster: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("contact: parsing roster: unknown field %q", undecoded[0].String())
	}
	return NewCatalog(r.Contacts...)
}
