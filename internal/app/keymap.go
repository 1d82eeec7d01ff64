package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sadopc/bizdesk/internal/ui/components"
)

// KeyMap defines all application keybindings.
type KeyMap struct {
	// Global
	Quit           key.Binding
	CommandPalette key.Binding
	Help           key.Binding
	Back           key.Binding
	Refresh        key.Binding
	SelectCompany  key.Binding
	GoTo           key.Binding
	Dismiss        key.Binding

	// Lists
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Search   key.Binding
	Sort     key.Binding
	SortDir  key.Binding
	Open     key.Binding
	Delete   key.Binding

	// Files and upload
	CycleType key.Binding
	CopyURL   key.Binding
	AddFiles  key.Binding
	Start     key.Binding
	Retry     key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q / ctrl+c", "quit"),
		),
		CommandPalette: key.NewBinding(
			key.WithKeys("ctrl+k", ":"),
			key.WithHelp("ctrl+k / :", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle this help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
		SelectCompany: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "select company"),
		),
		GoTo: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "open menu page"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss banner"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k / ↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j / ↓", "move down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "pgup"),
			key.WithHelp("h / pgup", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "pgdown"),
			key.WithHelp("l / pgdown", "next page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort column"),
		),
		SortDir: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "toggle sort direction"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open selected"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete selected"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle file type"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy download address"),
		),
		AddFiles: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add file paths"),
		),
		Start: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "start upload"),
		),
		Retry: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "retry failed file"),
		),
	}
}

// HelpSections groups the bindings for the help overlay.
func (k KeyMap) HelpSections() []components.HelpSection {
	return []components.HelpSection{
		{Title: "General", Bindings: []key.Binding{k.Quit, k.CommandPalette, k.Help, k.GoTo, k.SelectCompany, k.Back, k.Refresh, k.Dismiss}},
		{Title: "Lists", Bindings: []key.Binding{k.Up, k.Down, k.PrevPage, k.NextPage, k.Search, k.Sort, k.SortDir, k.Open, k.Delete}},
		{Title: "Files", Bindings: []key.Binding{k.CycleType, k.CopyURL}},
		{Title: "Upload", Bindings: []key.Binding{k.AddFiles, k.CycleType, k.Start, k.Retry}},
	}
}
