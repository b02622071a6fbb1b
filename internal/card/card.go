// Package card turns the contact catalog and the current selection into
// renderable cards, and renders them as plain text.
package card

import (
	"fmt"
	"io"
	"strings"

	"github.com/smileynet/quickdial/internal/contact"
	"github.com/smileynet/quickdial/internal/dial"
	"github.com/smileynet/quickdial/internal/selection"
)

// Labels shown on a card.
const (
	ActiveBadge   = "current driver"
	SelectControl = "make active"
	CallControl   = "call"
)

// View is one contact's card.
type View struct {
	Contact contact.Contact
	Active  bool
	Phone   string // Display form, see contact.FormatPhone.
	Color   string // Accent with the default applied.
	DialURI string // Always built from the raw phone.
}

// Chrome is the static text around the card list.
type Chrome struct {
	Title    string
	Subtitle string
	Footer   string
}

// Options controls card construction.
type Options struct {
	PhoneFormat contact.PhoneFormat
}

// Build returns one View per contact in catalog order.
func Build(cat *contact.Catalog, state selection.State, opts Options) []View {
	contacts := cat.Contacts()
	views := make([]View, len(contacts))
	for i, c := range contacts {
		views[i] = View{
			Contact: c,
			Active:  state.Is(c.ID),
			Phone:   contact.FormatPhone(c.Phone, opts.PhoneFormat),
			Color:   contact.Color(c),
			DialURI: dial.URI(c.Phone),
		}
	}
	return views
}

// Status returns the card's status text: the active badge, or the select control.
func (v View) Status() string {
	if v.Active {
		return ActiveBadge
	}
	return SelectControl
}

// RenderPlain writes the header, one block per card, and the footer as plain text.
func RenderPlain(w io.Writer, chrome Chrome, views []View) error {
	var b strings.Builder

	if chrome.Title != "" {
		b.WriteString(chrome.Title + "\n")
	}
	if chrome.Subtitle != "" {
		b.WriteString(chrome.Subtitle + "\n")
	}
	if chrome.Title != "" || chrome.Subtitle != "" {
		b.WriteByte('\n')
	}

	if len(views) == 0 {
		b.WriteString("No contacts\n")
	}
	for _, v := range views {
		marker := "  "
		status := "[" + v.Status() + "]"
		if v.Active {
			marker = "★ "
			status = "(" + v.Status() + ")"
		}
		fmt.Fprintf(&b, "%s%-3d %s\n", marker, v.Contact.ID, v.Contact.Name)
		fmt.Fprintf(&b, "      %s  %s  [%s %s]\n", v.Phone, status, CallControl, v.DialURI)
	}

	if chrome.Footer != "" {
		b.WriteString("\n" + chrome.Footer + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
