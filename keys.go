package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	Refresh   key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Recenter  key.Binding
	ExportPNG key.Binding
	ExportSVG key.Binding
	ExportTXT key.Binding
	Copy      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh paths"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up", "K", "shift+up"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down", "J", "shift+down"),
		key.WithHelp("↓/j", "pan down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left", "H", "shift+left"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right", "L", "shift+right"),
		key.WithHelp("→/l", "pan right"),
	),
	Recenter: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "recenter"),
	),
	ExportPNG: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export png"),
	),
	ExportSVG: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "export svg"),
	),
	ExportTXT: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "export txt"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy scene"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Refresh, k.Recenter},
		{k.Up, k.Down, k.Left, k.Right},
		{k.ExportPNG, k.ExportSVG, k.ExportTXT, k.Copy},
		{k.Help, k.Quit},
	}
}
