// Package keymap provides the key bindings of the terminal UI. Bindings are
// grouped per screen; each group implements help.KeyMap so the help bar can
// render it.
package keymap

import "github.com/charmbracelet/bubbles/key"

// Global bindings are active on every screen.
type Global struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding
}

// Library bindings drive the catalog list.
type Library struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Add    key.Binding
	Delete key.Binding
	Filter key.Binding
	Search key.Binding
	Logs   key.Binding
}

// Editor bindings drive the edit form.
type Editor struct {
	NextField key.Binding
	Save      key.Binding
	Cancel    key.Binding
}

// Picker bindings drive the search screen.
type Picker struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

// Logs bindings drive the log screen.
type Logs struct {
	Level  key.Binding
	Search key.Binding
	Clear  key.Binding
	Back   key.Binding
}

// Confirm bindings answer a prompt.
type Confirm struct {
	Yes key.Binding
	No  key.Binding
}

// Keymap is the complete binding set.
type Keymap struct {
	Global  Global
	Library Library
	Editor  Editor
	Picker  Picker
	Logs    Logs
	Confirm Confirm
}

// Default returns the default bindings.
func Default() Keymap {
	return Keymap{
		Global: Global{
			Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
			Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
			Back: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "back/quit")),
		},
		Library: Library{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Edit:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
			Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
			Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
			Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
			Search: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "pick")),
			Logs:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logs")),
		},
		Editor: Editor{
			NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
			Save:      key.NewBinding(key.WithKeys("ctrl+s", "enter"), key.WithHelp("enter", "save")),
			Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		Picker: Picker{
			Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
			Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
			Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		},
		Logs: Logs{
			Level:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "level")),
			Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
			Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
			Back:   key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
		},
		Confirm: Confirm{
			Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
			No:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
		},
	}
}

// ShortHelp implements help.KeyMap.
func (k Library) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Add, k.Delete, k.Filter, k.Search, k.Logs}
}

// FullHelp implements help.KeyMap.
func (k Library) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Edit}, {k.Add, k.Delete}, {k.Filter, k.Search, k.Logs}}
}

func (k Editor) ShortHelp() []key.Binding { return []key.Binding{k.NextField, k.Save, k.Cancel} }

func (k Editor) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func (k Picker) ShortHelp() []key.Binding { return []key.Binding{k.Up, k.Down, k.Choose, k.Cancel} }

func (k Picker) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func (k Logs) ShortHelp() []key.Binding { return []key.Binding{k.Level, k.Search, k.Clear, k.Back} }

func (k Logs) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func (k Confirm) ShortHelp() []key.Binding { return []key.Binding{k.Yes, k.No} }

func (k Confirm) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
