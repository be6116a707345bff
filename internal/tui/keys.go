package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	List key.Binding
	Help key.Binding
	Quit key.Binding
}

var keys = keyMap{
	List: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "всички молитви"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "помощ"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "изход"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.List, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.List}, {k.Help, k.Quit}}
}
