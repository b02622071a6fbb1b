package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/smileynet/quickdial/internal/contact"
	"github.com/smileynet/quickdial/internal/selection"
	"github.com/smileynet/quickdial/internal/store"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	return ansi.Strip(s)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// stubDialer records dialed URIs and returns err.
type stubDialer struct {
	mu   sync.Mutex
	uris []string
	err  error
}

func (d *stubDialer) Dial(_ context.Context, uri string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uris = append(d.uris, uri)
	return d.err
}

func (d *stubDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.uris...)
}

// failingStore accepts reads but rejects every write.
type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, nil }
func (failingStore) Set(string, string) error         { return errors.New("disk full") }

// scenarioCatalog is the two-contact roster: ömer (2) then Emre (3).
func scenarioCatalog() *contact.Catalog {
	return contact.MustCatalog(
		contact.Contact{ID: 2, Name: "ömer", Phone: "05453995105"},
		contact.Contact{ID: 3, Name: "Emre", Phone: "05452145704", Color: "#ff8800"},
	)
}

// newController returns an initialized controller over s.
func newController(t *testing.T, s selection.Store) *selection.Controller {
	t.Helper()
	c := selection.NewController(s)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return c
}

// newScenarioModel returns a sized model over the scenario catalog with an empty store.
func newScenarioModel(t *testing.T, opts ...Option) (Model, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	m := NewModel(scenarioCatalog(), newController(t, s), opts...)
	return sized(m, 80, 30), s
}

func sized(m Model, w, h int) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return updated.(Model)
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages. Spinner ticks are skipped
// to avoid recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			if c == nil {
				continue
			}
			result := c()
			if _, isTick := result.(spinner.TickMsg); !isTick {
				msgs = append(msgs, result)
			}
		}
		return msgs
	}
	return []tea.Msg{msg}
}
