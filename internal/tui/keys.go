package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Run    key.Binding
	Stop   key.Binding
	Select key.Binding
	Cycle  key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Run:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
		Stop:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Select: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select block")),
		Cycle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "cycle value")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Stop, k.Select, k.Cycle, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
