package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Add     key.Binding
	Type    key.Binding
	Delete  key.Binding
	Cancel  key.Binding
	Fit     key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Pan     key.Binding
	Yes     key.Binding
	No      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add node")),
		Type:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "node type")),
		Delete:  key.NewBinding(key.WithKeys("delete", "backspace", "x"), key.WithHelp("x", "delete")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Fit:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
		ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut: key.NewBinding(key.WithKeys("-", "_")),
		Pan:     key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑→↓", "pan")),
		Yes:     key.NewBinding(key.WithKeys("y", "enter")),
		No:      key.NewBinding(key.WithKeys("n", "esc")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Type, k.Delete, k.Fit, k.ZoomIn, k.Pan, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Cancel}}
}
