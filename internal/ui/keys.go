package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Down    key.Binding
	Up      key.Binding
	Right   key.Binding
	Left    key.Binding
	Detail  key.Binding
	React   key.Binding
	Delete  key.Binding
	Target  key.Binding
	Refresh key.Binding
	Debug   key.Binding
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "story next")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "story prev")),
		Detail:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail")),
		React:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "react")),
		Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Target:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "whose feed")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Debug:   key.NewBinding(key.WithKeys("`"), key.WithHelp("`", "events")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Right, k.React, k.Detail, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Right, k.Left},
		{k.Detail, k.React, k.Delete, k.Back},
		{k.Target, k.Refresh, k.Debug, k.Help, k.Quit},
	}
}

func (k keyMap) navigation() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Right, k.Left}
}
