// ABOUTME: Global and per-panel key bindings declared with bubbles/key
// ABOUTME: The help line in the footer is generated from these bindings

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the app reacts to.
type KeyMap struct {
	Chat    key.Binding
	Preview key.Binding
	Editor  key.Binding
	Files   key.Binding
	Browser key.Binding

	NewProject   key.Binding
	ClearHistory key.Binding
	Models       key.Binding
	Activity     key.Binding
	Download     key.Binding
	Refresh      key.Binding

	Cancel key.Binding
	Quit   key.Binding

	Submit key.Binding
	Save   key.Binding
	Tab    key.Binding

	Up       key.Binding
	Down     key.Binding
	PrevTab  key.Binding
	NextTab  key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Chat:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "chat")),
		Preview: key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "preview")),
		Editor:  key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "editor")),
		Files:   key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "files")),
		Browser: key.NewBinding(key.WithKeys("f5"), key.WithHelp("F5", "browser")),

		NewProject:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^N", "new project")),
		ClearHistory: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("^L", "clear")),
		Models:       key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "model")),
		Activity:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("^G", "activity")),
		Download:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("^D", "download")),
		Refresh:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "refresh")),

		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop/dismiss")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("^C", "quit")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save")),
		Tab:    key.NewBinding(key.WithKeys("tab")),

		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
		PrevTab:  key.NewBinding(key.WithKeys("left")),
		NextTab:  key.NewBinding(key.WithKeys("right")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
	}
}

// HelpLine renders the short help for the global bindings.
func (k KeyMap) HelpLine() string {
	bindings := []key.Binding{
		k.Chat, k.Preview, k.Editor, k.Files, k.Browser,
		k.NewProject, k.Models, k.Activity, k.Download, k.Cancel, k.Quit,
	}
	s := Styles()
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " "
		}
		h := b.Help()
		out += s.Bold.Render(h.Key) + s.Muted.Render(" "+h.Desc)
	}
	return out
}
