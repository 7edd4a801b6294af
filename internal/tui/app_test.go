// ABOUTME: Tests for the root AppModel: key routing to engine actions and snapshot application
// ABOUTME: Uses a recording Actions fake; no program or terminal is started

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/seekdeck/internal/editor"
	"github.com/mauromedda/seekdeck/internal/engine"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/screenshot"
	"github.com/mauromedda/seekdeck/internal/transcript"
	"github.com/mauromedda/seekdeck/internal/view"
)

type fakeActions struct {
	calls []string
}

func (f *fakeActions) rec(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeActions) Submit(text string)         { f.rec("submit %s", text) }
func (f *fakeActions) Stop()                      { f.rec("stop") }
func (f *fakeActions) SelectView(v view.View)     { f.rec("view %s", v) }
func (f *fakeActions) NewProject()                { f.rec("new") }
func (f *fakeActions) ClearHistory()              { f.rec("clear") }
func (f *fakeActions) OpenFile(path string)       { f.rec("open %s", path) }
func (f *fakeActions) EditContent(content string) { f.rec("edit %q", content) }
func (f *fakeActions) InsertTab(at int)           { f.rec("tab %d", at) }
func (f *fakeActions) Save()                      { f.rec("save") }
func (f *fakeActions) SelectPreview(file string)  { f.rec("preview %s", file) }
func (f *fakeActions) RefreshFiles()              { f.rec("refresh") }
func (f *fakeActions) LoadModels()                { f.rec("models") }
func (f *fakeActions) ChangeModel(p, m string)    { f.rec("model %s/%s", p, m) }
func (f *fakeActions) Download()                  { f.rec("download") }
func (f *fakeActions) DismissNotice()             { f.rec("dismiss") }

func (f *fakeActions) last() string {
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func newTestApp(t *testing.T) (AppModel, *fakeActions) {
	t.Helper()
	act := &fakeActions{}
	m := NewAppModel(act, screenshot.HalfBlock)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(AppModel), act
}

func send(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(AppModel), cmd
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestAppModel_FunctionKeysSelectViews(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyF1, "view chat"},
		{tea.KeyF2, "view preview"},
		{tea.KeyF3, "view editor"},
		{tea.KeyF4, "view files"},
		{tea.KeyF5, "view browser"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			m, act := newTestApp(t)
			send(t, m, tea.KeyMsg{Type: tt.key})
			if act.last() != tt.want {
				t.Errorf("calls = %v; want %q", act.calls, tt.want)
			}
		})
	}
}

func TestAppModel_GlobalShortcuts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyCtrlN, "new"},
		{tea.KeyCtrlL, "clear"},
		{tea.KeyCtrlD, "download"},
		{tea.KeyCtrlR, "refresh"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			m, act := newTestApp(t)
			send(t, m, tea.KeyMsg{Type: tt.key})
			if act.last() != tt.want {
				t.Errorf("calls = %v; want %q", act.calls, tt.want)
			}
		})
	}
}

func TestAppModel_SubmitFromChat(t *testing.T) {
	t.Parallel()
	m, act := newTestApp(t)

	for _, r := range "Buatkan kalkulator web" {
		if r == ' ' {
			m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m, _ = send(t, m, keyRunes(string(r)))
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if act.last() != "submit Buatkan kalkulator web" {
		t.Fatalf("calls = %v", act.calls)
	}
	if !m.prompt.IsEmpty() {
		t.Errorf("prompt not cleared: %q", m.prompt.Text())
	}

	// An empty prompt submits nothing.
	n := len(act.calls)
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(act.calls) != n {
		t.Errorf("empty submit produced %v", act.calls[n:])
	}
}

func TestAppModel_CtrlC(t *testing.T) {
	t.Parallel()

	m, act := newTestApp(t)
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !isQuit(cmd) || len(act.calls) != 0 {
		t.Errorf("idle ctrl+c: quit=%v calls=%v", isQuit(cmd), act.calls)
	}

	m, act = newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{InFlight: true}})
	_, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if isQuit(cmd) || act.last() != "stop" {
		t.Errorf("busy ctrl+c: quit=%v calls=%v", isQuit(cmd), act.calls)
	}
}

func TestAppModel_EscStopsOrDismisses(t *testing.T) {
	t.Parallel()

	m, act := newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{Notice: &engine.Notice{ID: 1, Text: "hi"}}})
	send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if act.last() != "dismiss" {
		t.Errorf("calls = %v; want dismiss", act.calls)
	}

	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{InFlight: true}})
	send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if act.last() != "stop" {
		t.Errorf("calls = %v; want stop", act.calls)
	}
}

func editorSnapshot(content string) engine.Snapshot {
	return engine.Snapshot{
		View:   view.Editor,
		Editor: editor.State{Path: "index.html", Content: content},
	}
}

func TestAppModel_EditorTabSaveAndEdit(t *testing.T) {
	t.Parallel()
	m, act := newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: editorSnapshot("ab")})
	if m.fileEd.Text() != "ab" {
		t.Fatalf("editor text = %q", m.fileEd.Text())
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if act.last() != "tab 1" {
		t.Errorf("calls = %v; want tab 1", act.calls)
	}
	if m.fileEd.Text() != "a  b" {
		t.Errorf("text = %q; want two spaces inserted", m.fileEd.Text())
	}

	m, _ = send(t, m, keyRunes("x"))
	if act.last() != `edit "a  xb"` {
		t.Errorf("calls = %v", act.calls)
	}

	send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if act.last() != "save" {
		t.Errorf("calls = %v; want save", act.calls)
	}
}

func TestAppModel_EditorKeepsLocalTextForSameFile(t *testing.T) {
	t.Parallel()
	m, _ := newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: editorSnapshot("one")})
	m, _ = send(t, m, keyRunes("Z"))

	// A lagging snapshot for the same file must not clobber local typing.
	m, _ = send(t, m, SnapshotMsg{Snapshot: editorSnapshot("one")})
	if m.fileEd.Text() != "Zone" {
		t.Errorf("text = %q; want local edit kept", m.fileEd.Text())
	}

	other := editorSnapshot("other")
	other.Editor.Path = "b.txt"
	m, _ = send(t, m, SnapshotMsg{Snapshot: other})
	if m.fileEd.Text() != "other" {
		t.Errorf("text = %q; want reload on file change", m.fileEd.Text())
	}
}

func TestAppModel_TruncatedFileIsReadOnly(t *testing.T) {
	t.Parallel()
	m, act := newTestApp(t)
	snap := editorSnapshot("ab")
	snap.Editor.Truncated = true
	m, _ = send(t, m, SnapshotMsg{Snapshot: snap})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = send(t, m, keyRunes("x"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.fileEd.Text() != "ab" {
		t.Errorf("text = %q; edits should be refused", m.fileEd.Text())
	}
	if _, col := m.fileEd.CursorPos(); col != 1 {
		t.Errorf("cursor col = %d; navigation should still work", col)
	}
	for _, c := range act.calls {
		if strings.HasPrefix(c, "edit") || strings.HasPrefix(c, "tab") {
			t.Errorf("read-only editor sent %q", c)
		}
	}
	if !strings.Contains(m.View(), "read-only") {
		t.Error("read-only marker missing")
	}

	send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if act.last() != "save" {
		t.Errorf("calls = %v; save should still report the refusal", act.calls)
	}
}

func TestAppModel_FilesEnterOpens(t *testing.T) {
	t.Parallel()
	m, act := newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{
		View: view.Files,
		ProjectFiles: []protocol.ProjectFile{
			{Name: "index.html", Size: 120},
			{Name: "style.css", Size: 40},
		},
	}})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if act.last() != "open style.css" {
		t.Errorf("calls = %v", act.calls)
	}
}

func TestAppModel_PreviewTabs(t *testing.T) {
	t.Parallel()
	m, act := newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{
		View:            view.Preview,
		PreviewFiles:    []string{"a.html", "b.html"},
		SelectedPreview: "a.html",
	}})
	send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if act.last() != "preview b.html" {
		t.Errorf("calls = %v", act.calls)
	}
	send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if act.last() != "preview b.html" {
		t.Errorf("left should wrap to b.html: %v", act.calls)
	}
}

func TestAppModel_ModelSelectorFlow(t *testing.T) {
	t.Parallel()
	m, act := newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{
		ModelsLoaded: true,
		Models: protocol.ModelConfig{
			CurrentProvider: "groq",
			CurrentModel:    "a",
			Providers: map[string]protocol.Provider{
				"groq": {Name: "Groq", Models: []string{"a", "b"}},
			},
		},
	}})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.overlay == nil {
		t.Fatal("overlay not opened")
	}
	if !strings.Contains(m.View(), "Select model") {
		t.Error("overlay not rendered")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	m, _ = send(t, m, cmd())
	if m.overlay != nil {
		t.Error("overlay still open")
	}
	if act.last() != "model groq/b" {
		t.Errorf("calls = %v", act.calls)
	}
}

func TestAppModel_ClosedSnapshotQuits(t *testing.T) {
	t.Parallel()
	m, _ := newTestApp(t)
	_, cmd := send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{Closed: true}})
	if !isQuit(cmd) {
		t.Error("closed snapshot should quit")
	}
}

func TestAppModel_ViewShowsTranscriptAndDirtyTab(t *testing.T) {
	t.Parallel()
	m, _ := newTestApp(t)
	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{
		Messages: []transcript.Message{
			{Kind: transcript.KindUser, Content: "hello there"},
			{Kind: transcript.KindError, Content: "Backend is busy"},
		},
		Editor: editor.State{Path: "a.txt", Dirty: true},
	}})
	out := m.View()
	for _, want := range []string{"hello there", "Backend is busy", "Editor*", "F1"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppModel_ModelSelectorWaitsForModels(t *testing.T) {
	t.Parallel()
	m, act := newTestApp(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.overlay != nil {
		t.Fatal("overlay opened before models loaded")
	}
	if act.last() != "models" {
		t.Fatalf("calls = %v; want a model load", act.calls)
	}

	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{
		ModelsLoaded: true,
		Models: protocol.ModelConfig{
			CurrentProvider: "groq",
			CurrentModel:    "a",
			Providers:       map[string]protocol.Provider{"groq": {Models: []string{"a"}}},
		},
	}})
	if m.overlay == nil {
		t.Error("overlay should open once models arrive")
	}
}
