package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the grid/chart view.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Pin       key.Binding
	Hide      key.Binding
	ShowAll   key.Binding
	RowGroup  key.Binding
	Inc       key.Binding
	Dec       key.Binding
	Create    key.Binding
	Detach    key.Binding
	Type      key.Binding
	Theme     key.Binding
	Grow      key.Binding
	Shrink    key.Binding
	Panel     key.Binding
	Toggle    key.Binding
	Export    key.Binding
	Copy      key.Binding
	Next      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		MoveLeft:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "move col left")),
		MoveRight: key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "move col right")),
		Pin:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
		Hide:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hide col")),
		ShowAll:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "show all")),
		RowGroup:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "row group")),
		Inc:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "increment")),
		Dec:       key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "decrement")),
		Create:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chart")),
		Detach:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "detach")),
		Type:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type")),
		Theme:     key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Grow:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "chart one more row")),
		Shrink:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "chart one less row")),
		Panel:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "panel")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy image")),
		Next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next chart")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Create, k.Detach, k.Type, k.Theme, k.Panel, k.Export, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.MoveLeft, k.MoveRight, k.Pin, k.Hide, k.ShowAll, k.RowGroup},
		{k.Inc, k.Dec, k.Create, k.Detach, k.Type, k.Theme, k.Grow, k.Shrink, k.Next},
		{k.Panel, k.Toggle, k.Export, k.Copy, k.Help, k.Quit},
	}
}
