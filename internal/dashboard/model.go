package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/smileynet/quickdial/internal/card"
	"github.com/smileynet/quickdial/internal/contact"
	"github.com/smileynet/quickdial/internal/dial"
	"github.com/smileynet/quickdial/internal/selection"
)

// CursorMarker prefixes the focused card's name.
const CursorMarker = "▸ "

// dialTimeout bounds how long the platform opener may take to return.
const dialTimeout = 10 * time.Second

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// Model is the root Bubble Tea model for the quick-dial screen.
type Model struct {
	catalog *contact.Catalog
	ctrl    *selection.Controller
	dialer  dial.Dialer
	logger  *slog.Logger
	chrome  card.Chrome
	opts    card.Options
	styles  Styles
	keys    dialKeys

	cursor   int
	width    int
	height   int
	viewport viewport.Model
	help     help.Model
	spinner  spinner.Model

	dialing  int // Contact ID with a dial in flight; valid when inFlight.
	inFlight bool
	status   string
	err      error
}

// Option configures a Model.
type Option func(*Model)

// WithDialer sets the dialer used by the call action.
func WithDialer(d dial.Dialer) Option {
	return func(m *Model) { m.dialer = d }
}

// WithLogger sets the logger for selection and dial events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithChrome sets the header and footer text.
func WithChrome(c card.Chrome) Option {
	return func(m *Model) { m.chrome = c }
}

// WithPhoneFormat sets how phone numbers are displayed.
func WithPhoneFormat(f contact.PhoneFormat) Option {
	return func(m *Model) { m.opts.PhoneFormat = f }
}

// WithStyles replaces the default style mapping.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// NewModel creates a Model over cat whose selection is owned by ctrl.
// ctrl should already be initialized. The cursor starts on the active card, if any.
func NewModel(cat *contact.Catalog, ctrl *selection.Controller, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		catalog:  cat,
		ctrl:     ctrl,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		styles:   DefaultStyles(),
		keys:     DialKeyMap(),
		viewport: viewport.New(0, 0),
		help:     help.New(),
		spinner:  s,
	}
	for _, opt := range opts {
		opt(&m)
	}

	for i, c := range cat.Contacts() {
		if ctrl.IsActive(c.ID) {
			m.cursor = i
			break
		}
	}
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Err returns the error that stopped the program, if any.
func (m Model) Err() error {
	return m.err
}

// Cards returns the current card views in catalog order.
func (m Model) Cards() []card.View {
	return card.Build(m.catalog, m.ctrl.State(), m.opts)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DialedMsg:
		m.inFlight = false
		if msg.Err != nil {
			m.logger.Warn("dial handoff failed", "contact", msg.ContactID, "uri", msg.URI, "err", msg.Err)
			m.status = ""
			m.syncViewport()
			return m, nil
		}
		m.logger.Info("dial handed off", "contact", msg.ContactID, "uri", msg.URI)
		if c, ok := m.catalog.Lookup(msg.ContactID); ok {
			m.status = "Handed " + c.Name + " to the phone app"
		}
		m.syncViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.inFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes key messages.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.catalog.Len()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if n > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = n - 1
			}
			m.syncViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if n > 0 {
			m.cursor++
			if m.cursor >= n {
				m.cursor = 0
			}
			m.syncViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		c, ok := m.focused()
		if !ok || m.ctrl.IsActive(c.ID) {
			return m, nil
		}
		if err := m.ctrl.Select(c.ID); err != nil {
			m.logger.Error("persisting selection failed", "contact", c.ID, "err", err)
			m.err = err
			return m, tea.Quit
		}
		m.status = ""
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.Call):
		c, ok := m.focused()
		if !ok || m.dialer == nil || m.inFlight {
			return m, nil
		}
		m.inFlight = true
		m.dialing = c.ID
		m.status = ""
		m.syncViewport()
		return m, tea.Batch(dialCmd(m.dialer, c), m.spinner.Tick)
	}

	return m, nil
}

// dialCmd returns a tea.Cmd that hands the contact's dial intent to d.
func dialCmd(d dial.Dialer, c contact.Contact) tea.Cmd {
	uri := dial.URI(c.Phone)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		return DialedMsg{ContactID: c.ID, URI: uri, Err: d.Dial(ctx, uri)}
	}
}

// focused returns the contact under the cursor.
func (m Model) focused() (contact.Contact, bool) {
	contacts := m.catalog.Contacts()
	if m.cursor < 0 || m.cursor >= len(contacts) {
		return contact.Contact{}, false
	}
	return contacts[m.cursor], true
}

// headerHeight returns the number of lines used by the header block.
func (m Model) headerHeight() int {
	return lipgloss.Height(m.viewHeader())
}

// footerHeight returns the lines below the list: status, footer and help bar.
func (m Model) footerHeight() int {
	return lipgloss.Height(m.viewFooter()) + helpBarHeight
}

// listHeight returns the usable height for the card list.
func (m Model) listHeight() int {
	h := m.height - m.headerHeight() - m.footerHeight()
	if h < cardHeight {
		return cardHeight
	}
	return h
}

// syncViewport fits the viewport between header and footer, re-renders the
// card list into it and scrolls so the focused card is fully visible.
// The footer grows by a status line while a dial is in flight or reported.
func (m *Model) syncViewport() {
	m.viewport.Height = m.listHeight()
	m.viewport.SetContent(m.viewCards())

	top := m.cursor * cardHeight
	bottom := top + cardHeight
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

// View renders the header, card list, footer and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Content may have changed since the last resize (selection, dial state).
	vp := m.viewport
	vp.Height = m.listHeight()
	vp.SetContent(m.viewCards())

	focusedActive := false
	if c, ok := m.focused(); ok {
		focusedActive = m.ctrl.IsActive(c.ID)
	}
	helpView := m.help.View(HelpBindings(focusedActive))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		vp.View(),
		m.viewFooter(),
		helpView,
	)
}

// viewHeader renders the static title and subtitle.
func (m Model) viewHeader() string {
	var lines []string
	if m.chrome.Title != "" {
		lines = append(lines, m.styles.Header.Render(m.chrome.Title))
	}
	if m.chrome.Subtitle != "" {
		lines = append(lines, m.styles.Subtitle.Render(m.chrome.Subtitle))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// viewFooter renders the dial status line and the static footer.
func (m Model) viewFooter() string {
	var lines []string
	switch {
	case m.inFlight:
		name := ""
		if c, ok := m.catalog.Lookup(m.dialing); ok {
			name = c.Name
		}
		lines = append(lines, m.styles.Status.Render(fmt.Sprintf("%s Calling %s...", m.spinner.View(), name)))
	case m.status != "":
		lines = append(lines, m.styles.Status.Render(m.status))
	}
	if m.chrome.Footer != "" {
		lines = append(lines, m.styles.Footer.Render(m.chrome.Footer))
	}
	return strings.Join(lines, "\n")
}

// viewCards renders every card stacked vertically in catalog order.
func (m Model) viewCards() string {
	views := m.Cards()
	if len(views) == 0 {
		return "No contacts"
	}

	width := CardWidth(m.width)
	rendered := make([]string, len(views))
	for i, v := range views {
		rendered[i] = m.viewCard(v, i == m.cursor, width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// viewCard renders one card: name and status on the first line, phone and
// call control on the second.
func (m Model) viewCard(v card.View, focused bool, width int) string {
	prefix := "  "
	if focused {
		prefix = CursorMarker
	}
	name := prefix + m.styles.Name.Foreground(lipgloss.Color(v.Color)).Render(v.Contact.Name)

	var status string
	if v.Active {
		status = m.styles.Badge.Render("● " + card.ActiveBadge)
	} else {
		status = m.styles.Control.Render("[s] " + card.SelectControl)
	}

	call := m.styles.Control.Render("[c] " + card.CallControl)
	phone := "  " + m.styles.Phone.Render(v.Phone)

	top := spread(name, status, width-2)
	bottom := spread(phone, call, width-2)
	return m.styles.cardStyle(v.Color, focused, width).Render(top + "\n" + bottom)
}

// spread places left and right on one line, padded apart to width.
// When both do not fit, left is truncated; right is never cut.
func spread(left, right string, width int) string {
	rw := lipgloss.Width(right)
	if room := width - rw - 1; lipgloss.Width(left) > room && room > 0 {
		left = ansi.Truncate(left, room, "…")
	}
	gap := width - lipgloss.Width(left) - rw
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
