package keys

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/nhle/mailai/internal/locale"
)

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Focus key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Categorize the inbox
	Analyse key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings with help text in
// the language of loc.
func DefaultKeyMap(loc *locale.Localizer) *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", loc.T(locale.KeyDown)),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", loc.T(locale.KeyUp)),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", loc.T(locale.KeyFocus)),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", loc.T(locale.KeySelect)),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", loc.T(locale.KeyBack)),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", loc.T(locale.KeyQuit)),
		),
		Analyse: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", loc.T(locale.KeyAnalyse)),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", loc.T(locale.KeyCommand)),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", loc.T(locale.KeyHelp)),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Focus, k.Analyse, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus},
		{k.Select, k.Back, k.Quit},
		{k.Analyse, k.Command, k.Help},
	}
}
