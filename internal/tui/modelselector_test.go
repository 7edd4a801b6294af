// ABOUTME: Tests for ModelSelectorModel and ModelEntries
// ABOUTME: Entries are sorted by provider key; the selector opens on the current model

package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

func testModelConfig() protocol.ModelConfig {
	return protocol.ModelConfig{
		CurrentProvider: "openai",
		CurrentModel:    "gpt-4o",
		Providers: map[string]protocol.Provider{
			"openai": {Name: "OpenAI", Models: []string{"gpt-4o-mini", "gpt-4o"}},
			"groq":   {Models: []string{"llama"}},
		},
	}
}

func TestModelEntries(t *testing.T) {
	t.Parallel()

	got := ModelEntries(testModelConfig())
	if len(got) != 3 {
		t.Fatalf("entries = %d; want 3", len(got))
	}
	if got[0].Provider != "groq" || got[0].ProviderName != "groq" {
		t.Errorf("first entry = %+v; want groq with key as name", got[0])
	}
	if !got[2].Current || got[2].Model != "gpt-4o" {
		t.Errorf("current entry = %+v", got[2])
	}
}

func TestModelSelectorModel_Navigation(t *testing.T) {
	t.Parallel()

	m := NewModelSelectorModel(ModelEntries(testModelConfig()), 20)
	if m.selected != 2 {
		t.Fatalf("opened at %d; want current model (2)", m.selected)
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(ModelSelectorModel)
	if m.selected != 2 {
		t.Errorf("moved past end: %d", m.selected)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(ModelSelectorModel)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := cmd().(ModelSelectedMsg)
	if !ok || msg.Entry.Model != "gpt-4o-mini" {
		t.Errorf("selected = %#v", msg)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(ModelSelectorDismissMsg); !ok {
		t.Error("esc did not dismiss")
	}
}

func TestModelSelectorModel_EmptyEnterIsNoop(t *testing.T) {
	t.Parallel()

	m := NewModelSelectorModel(nil, 10)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on empty list returned a command")
	}
}
