package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Query actions
	Refetch    key.Binding
	FetchMore  key.Binding
	TogglePoll key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Global
	CycleTheme key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Refetch: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refetch"),
		),
		FetchMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Fetch more"),
		),
		TogglePoll: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Toggle polling"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refetch, k.FetchMore, k.TogglePoll, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refetch, k.FetchMore, k.TogglePoll},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
