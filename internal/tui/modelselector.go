// ABOUTME: ModelSelectorModel is an overlay listing provider/model pairs
// ABOUTME: Returns ModelSelectedMsg on enter, ModelSelectorDismissMsg on esc

package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

// ModelEntry is one selectable provider/model pair.
type ModelEntry struct {
	Provider     string
	ProviderName string
	Model        string
	Current      bool
}

// ModelSelectedMsg is returned when the user picks a model.
type ModelSelectedMsg struct{ Entry ModelEntry }

// ModelSelectorDismissMsg is returned when the user closes the selector.
type ModelSelectorDismissMsg struct{}

// ModelEntries flattens a model configuration, providers sorted by key.
func ModelEntries(mc protocol.ModelConfig) []ModelEntry {
	keys := make([]string, 0, len(mc.Providers))
	for k := range mc.Providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []ModelEntry
	for _, k := range keys {
		p := mc.Providers[k]
		name := p.Name
		if name == "" {
			name = k
		}
		for _, model := range p.Models {
			out = append(out, ModelEntry{
				Provider:     k,
				ProviderName: name,
				Model:        model,
				Current:      k == mc.CurrentProvider && model == mc.CurrentModel,
			})
		}
	}
	return out
}

// ModelSelectorModel lists models for selection.
type ModelSelectorModel struct {
	entries  []ModelEntry
	selected int
	height   int
}

// NewModelSelectorModel opens on the current model.
func NewModelSelectorModel(entries []ModelEntry, height int) ModelSelectorModel {
	m := ModelSelectorModel{entries: entries, height: height}
	for i, e := range entries {
		if e.Current {
			m.selected = i
		}
	}
	return m
}

// Init implements tea.Model.
func (m ModelSelectorModel) Init() tea.Cmd { return nil }

// Update handles navigation, selection and dismiss.
func (m ModelSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(m.entries)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.selected]
		return m, func() tea.Msg { return ModelSelectedMsg{Entry: e} }
	case tea.KeyEsc:
		return m, func() tea.Msg { return ModelSelectorDismissMsg{} }
	}
	return m, nil
}

// View renders the list inside a bordered box.
func (m ModelSelectorModel) View() string {
	s := Styles()
	var b strings.Builder
	b.WriteString(s.Bold.Render("Select model"))
	if len(m.entries) == 0 {
		b.WriteString("\n" + s.Muted.Render("No models available"))
		return s.Overlay.Render(b.String())
	}

	rows := len(m.entries)
	if m.height > 4 {
		rows = min(rows, m.height-4)
	}
	start := max(0, min(m.selected-rows/2, len(m.entries)-rows))
	for i := start; i < start+rows; i++ {
		e := m.entries[i]
		marker := "  "
		if e.Current {
			marker = "● "
		}
		line := marker + e.ProviderName + " / " + e.Model
		b.WriteByte('\n')
		if i == m.selected {
			b.WriteString(s.Selection.Render(line))
		} else {
			b.WriteString(line)
		}
	}
	b.WriteString("\n" + s.Muted.Render("↑↓ move  enter select  esc close"))
	return s.Overlay.Render(b.String())
}
