package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the panel keybindings.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	Open         key.Binding
	Back         key.Binding
	Sync         key.Binding
	Reload       key.Binding
	Generate     key.Binding
	Send         key.Binding
	Tone         key.Binding
	Instructions key.Binding
	Help         key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("K", "pgup"),
			key.WithHelp("K", "scroll preview up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("J", "pgdown"),
			key.WithHelp("J", "scroll preview down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "full view"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate draft"),
		),
		Send: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "send draft"),
		),
		Tone: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle tone"),
		),
		Instructions: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "extra instructions"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sync, k.Generate, k.Send, k.Tone, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ScrollUp, k.ScrollDown, k.Open, k.Back},
		{k.Sync, k.Reload, k.Generate, k.Send},
		{k.Tone, k.Instructions, k.Help, k.Quit},
	}
}
