package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the incident search TUI.
type KeyMap struct {
	// Available in both focus regions.
	Search    key.Binding
	ForceQuit key.Binding

	// Filter inputs.
	NextField   key.Binding
	PrevField   key.Binding
	Blur        key.Binding
	ResetFilter key.Binding

	// Results table.
	NextPage   key.Binding
	PrevPage   key.Binding
	GrowPage   key.Binding
	ShrinkPage key.Binding
	Sort       key.Binding // 1-8, by column position
	Language   key.Binding
	Reset      key.Binding
	Filters    key.Binding
	Quit       key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Search: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "search"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab", "previous field"),
	),
	Blur: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "results"),
	),
	ResetFilter: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "reset"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right", "pgdown"),
		key.WithHelp("n", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left", "pgup"),
		key.WithHelp("p", "previous page"),
	),
	GrowPage: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "larger pages"),
	),
	ShrinkPage: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "smaller pages"),
	),
	Sort: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"),
		key.WithHelp("1-8", "sort"),
	),
	Language: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "language"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r", "ctrl+r"),
		key.WithHelp("r", "reset"),
	),
	Filters: key.NewBinding(
		key.WithKeys("/", "tab"),
		key.WithHelp("/", "filters"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}
