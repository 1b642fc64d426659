package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	SwitchTab key.Binding
	StartDate key.Binding
	EndDate   key.Binding
	Search    key.Binding
	ShowAll   key.Binding
	SortBy    key.Binding
	Select    key.Binding
	AllCtry   key.Binding
	Scale     key.Binding
	Reload    key.Binding
	Apply     key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.SwitchTab, k.StartDate, k.EndDate, k.Search, k.SortBy, k.ShowAll, k.Reload}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.SwitchTab, k.Reload},
		{k.StartDate, k.EndDate, k.ShowAll, k.Search, k.SortBy},
		{k.Select, k.AllCtry, k.Scale},
	}
}

var keys = keyMap{
	SwitchTab: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "table/chart"),
	),
	StartDate: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start date"),
	),
	EndDate: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "end date"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search country"),
	),
	ShowAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all dates"),
	),
	SortBy: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"),
		key.WithHelp("1-8", "sort column"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "chart country"),
	),
	AllCtry: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "all countries"),
	),
	Scale: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "log/lin"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

// sortColumnForKey maps the digit keys to table columns.
func sortColumnForKey(k string) (int, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '8' {
		return 0, false
	}
	return int(k[0] - '1'), true
}
