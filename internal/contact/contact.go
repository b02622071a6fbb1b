// Package contact defines the read-only contact catalog shown on the quick-dial screen.
package contact

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultColor is the accent used for contacts that do not set one.
const DefaultColor = "#4a90d9"

// Sentinel errors for caller-checkable conditions.
var (
	ErrDuplicateID    = errors.New("contact: duplicate contact ID")
	ErrUnknownContact = errors.New("contact: unknown contact")
)

// Contact is a single dialable entry. Contacts are immutable once a Catalog is built.
type Contact struct {
	ID    int    `yaml:"id" toml:"id"`
	Name  string `yaml:"name" toml:"name"`
	Phone string `yaml:"phone" toml:"phone"`
	Color string `yaml:"color" toml:"color"` // Optional; see Color.
}

// Color returns the contact's accent, or DefaultColor when none is set.
func Color(c Contact) string {
	if strings.TrimSpace(c.Color) == "" {
		return DefaultColor
	}
	return c.Color
}

// Catalog is an ordered, read-only sequence of contacts. Order is display order.
type Catalog struct {
	contacts []Contact
	index    map[int]int
}

// NewCatalog builds a Catalog preserving the given order.
// It returns ErrDuplicateID if two contacts share an ID.
func NewCatalog(contacts ...Contact) (*Catalog, error) {
	c := &Catalog{
		contacts: make([]Contact, 0, len(contacts)),
		index:    make(map[int]int, len(contacts)),
	}
	for _, ct := range contacts {
		if _, dup := c.index[ct.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, ct.ID)
		}
		c.index[ct.ID] = len(c.contacts)
		c.contacts = append(c.contacts, ct)
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error. Intended for static rosters.
func MustCatalog(contacts ...Contact) *Catalog {
	c, err := NewCatalog(contacts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Contacts returns a copy of the catalog in display order.
func (c *Catalog) Contacts() []Contact {
	return append([]Contact(nil), c.contacts...)
}

// Len returns the number of contacts.
func (c *Catalog) Len() int {
	return len(c.contacts)
}

// Lookup returns the contact with the given ID.
func (c *Catalog) Lookup(id int) (Contact, bool) {
	i, ok := c.index[id]
	if !ok {
		return Contact{}, false
	}
	return c.contacts[i], true
}

// Get is like Lookup but returns ErrUnknownContact for missing IDs.
func (c *Catalog) Get(id int) (Contact, error) {
	ct, ok := c.Lookup(id)
	if !ok {
		return Contact{}, fmt.Errorf("%w: %d", ErrUnknownContact, id)
	}
	return ct, nil
}

// PhoneFormat selects how phone numbers are displayed.
type PhoneFormat string

const (
	PhoneRaw    PhoneFormat = "raw"    // Display the phone exactly as stored.
	PhoneDigits PhoneFormat = "digits" // Display only the digits.
)

// FormatPhone returns the display form of phone. Unknown formats fall back to raw.
// The dial URI never uses this; it always carries the stored phone.
func FormatPhone(phone string, format PhoneFormat) string {
	if format != PhoneDigits {
		return phone
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}
