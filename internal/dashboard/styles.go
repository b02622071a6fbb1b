package dashboard

import (
	"github.com/charmbracelet/lipgloss"
)

// MaxCardWidth caps card width on wide terminals.
const MaxCardWidth = 60

// cardHeight is the rendered height of one card: two content lines plus borders.
const cardHeight = 4

// Styles maps each screen element role to its lipgloss style.
type Styles struct {
	Header   lipgloss.Style
	Subtitle lipgloss.Style
	Card     lipgloss.Style
	Name     lipgloss.Style
	Phone    lipgloss.Style
	Badge    lipgloss.Style
	Control  lipgloss.Style
	Status   lipgloss.Style
	Footer   lipgloss.Style
}

// DefaultStyles returns the built-in style mapping.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"}),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		Name: lipgloss.NewStyle().Bold(true),
		Phone: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "236", Dark: "252"}),
		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"}),
		Control: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"}),
		Status: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "3", Dark: "11"}),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"}),
	}
}

// cardStyle returns the card frame for a contact accent.
// The focused card gets a thick border; others a rounded one.
func (s Styles) cardStyle(accent string, focused bool, width int) lipgloss.Style {
	st := s.Card.BorderForeground(lipgloss.Color(accent))
	if focused {
		st = st.Border(lipgloss.ThickBorder())
	}
	if width > 0 {
		st = st.Width(width)
	}
	return st
}

// CardWidth returns the inner card width for a terminal width.
// The frame (border + padding) takes 4 columns.
func CardWidth(totalWidth int) int {
	w := totalWidth - 4
	if w > MaxCardWidth {
		w = MaxCardWidth
	}
	if w < 0 {
		w = 0
	}
	return w
}
