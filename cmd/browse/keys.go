package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Filter   key.Binding
	Sort     key.Binding
	Apply    key.Binding
	ClearAll key.Binding
	PrevChip key.Binding
	NextChip key.Binding
	Unchip   key.Binding
	Retry    key.Binding
	Close    key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Apply:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply")),
		ClearAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear all")),
		PrevChip: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev filter")),
		NextChip: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next filter")),
		Unchip:   key.NewBinding(key.WithKeys("backspace", "x"), key.WithHelp("x", "remove filter")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Filter, k.Sort, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Filter, k.Sort, k.ClearAll},
		{k.PrevChip, k.NextChip, k.Unchip},
		{k.Apply, k.Retry, k.Close, k.Quit},
	}
}
