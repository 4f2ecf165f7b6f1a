package console

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for terminal mode
type KeyMap struct {
	Tap     key.Binding
	Start   key.Binding
	Restart key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tap: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start / breathe in"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns a short help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.Restart, k.Quit}
}

// FullHelp returns the full help string
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tap, k.Start},
		{k.Restart, k.Quit},
	}
}
