package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the queue view and the add form.
type KeyMap struct {
	Up               key.Binding
	Down             key.Binding
	Add              key.Binding
	CompleteActive   key.Binding
	CompleteSelected key.Binding
	Quit             key.Binding

	// Form
	Next   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		CompleteActive: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete active"),
		),
		CompleteSelected: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "complete selected"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next/save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Add, k.CompleteActive, k.CompleteSelected, k.Quit}
}
