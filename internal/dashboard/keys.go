package dashboard

import "github.com/charmbracelet/bubbles/key"

// dialKeys holds key bindings for the quick-dial screen.
type dialKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Call   key.Binding
	Quit   key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k dialKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Call, k.Quit}
}

// FullHelp returns the bindings grouped for expanded help.
func (k dialKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Call, k.Quit},
	}
}

// DialKeyMap returns the key bindings for the quick-dial screen.
func DialKeyMap() dialKeys {
	return dialKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", "s"),
			key.WithHelp("enter/s", "make active"),
		),
		Call: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "call"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
