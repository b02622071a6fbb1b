package dashboard

import (
	"github.com/charmbracelet/bubbles/help"
)

// HelpBindings returns the help.KeyMap for the focused card.
// The select binding is hidden when the focused card is already active.
func HelpBindings(focusedActive bool) help.KeyMap {
	km := DialKeyMap()
	if focusedActive {
		km.Select.SetEnabled(false)
	}
	return km
}
