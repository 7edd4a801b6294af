// ABOUTME: Root AppModel wiring the panels, the footer and the model and activity overlays
// ABOUTME: Keys become engine actions; engine snapshots drive every panel

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/seekdeck/internal/editor"
	"github.com/mauromedda/seekdeck/internal/engine"
	"github.com/mauromedda/seekdeck/internal/screenshot"
	"github.com/mauromedda/seekdeck/internal/view"
)

// Actions is the engine surface the UI drives. *engine.Engine implements it.
type Actions interface {
	Submit(text string)
	Stop()
	SelectView(v view.View)
	NewProject()
	ClearHistory()
	OpenFile(path string)
	EditContent(content string)
	InsertTab(at int)
	Save()
	SelectPreview(file string)
	RefreshFiles()
	LoadModels()
	ChangeModel(provider, model string)
	Download()
	DismissNotice()
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	act  Actions
	keys KeyMap

	snap          engine.Snapshot
	width, height int

	prompt      EditorModel
	fileEd      EditorModel
	filePath    string
	fileLoading bool

	chat    ChatModel
	preview PreviewModel
	files   FilesModel
	browser BrowserModel
	footer  FooterModel

	overlay tea.Model
	// wantModels opens the selector once the model list arrives.
	wantModels bool
}

const promptRows = 3

// NewAppModel creates the root model.
func NewAppModel(act Actions, proto screenshot.Protocol) AppModel {
	keys := DefaultKeyMap()
	return AppModel{
		act:     act,
		keys:    keys,
		prompt:  NewEditorModel().SetFocused(true).SetPrompt("❯ ").SetPlaceholder("Describe what to build"),
		fileEd:  NewEditorModel().SetFocused(true).SetGutter(true),
		chat:    NewChatModel(),
		preview: NewPreviewModel(),
		files:   NewFilesModel(),
		browser: NewBrowserModel(proto),
		footer:  NewFooterModel(keys),
	}
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd { return nil }

// Update routes messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.layout(), nil

	case SnapshotMsg:
		return m.applySnapshot(msg.Snapshot)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case ModelSelectedMsg:
		m.overlay = nil
		m.act.ChangeModel(msg.Entry.Provider, msg.Entry.Model)
		return m, nil

	case ModelSelectorDismissMsg, ActivityDismissMsg:
		m.overlay = nil
		return m, nil

	case tea.KeyMsg:
		if m.overlay != nil {
			if key.Matches(msg, m.keys.Quit) {
				m.overlay = nil
				return m, nil
			}
			updated, cmd := m.overlay.Update(msg)
			m.overlay = updated
			return m, cmd
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		switch m.snap.View {
		case view.Chat:
			m.chat, cmd = m.chat.Update(msg)
		case view.Preview:
			m.preview, cmd = m.preview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		if m.snap.InFlight {
			m.act.Stop()
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, k.Cancel):
		if m.snap.InFlight {
			m.act.Stop()
		} else if m.snap.Notice != nil {
			m.act.DismissNotice()
		}
		return m, nil
	case key.Matches(msg, k.Chat):
		m.act.SelectView(view.Chat)
		return m, nil
	case key.Matches(msg, k.Preview):
		m.act.SelectView(view.Preview)
		return m, nil
	case key.Matches(msg, k.Editor):
		m.act.SelectView(view.Editor)
		return m, nil
	case key.Matches(msg, k.Files):
		m.act.SelectView(view.Files)
		return m, nil
	case key.Matches(msg, k.Browser):
		m.act.SelectView(view.Browser)
		return m, nil
	case key.Matches(msg, k.NewProject):
		m.act.NewProject()
		return m, nil
	case key.Matches(msg, k.ClearHistory):
		m.act.ClearHistory()
		return m, nil
	case key.Matches(msg, k.Models):
		if !m.snap.ModelsLoaded {
			m.wantModels = true
			m.act.LoadModels()
			return m, nil
		}
		m.overlay = NewModelSelectorModel(ModelEntries(m.snap.Models), m.height)
		return m, nil
	case key.Matches(msg, k.Activity):
		m.overlay = NewActivityModel(m.snap.Plan, m.snap.Activity, m.width, m.bodyHeight())
		return m, nil
	case key.Matches(msg, k.Download):
		m.act.Download()
		return m, nil
	case key.Matches(msg, k.Refresh):
		m.act.RefreshFiles()
		return m, nil
	}

	switch m.snap.View {
	case view.Chat:
		return m.chatKey(msg)
	case view.Preview:
		return m.previewKey(msg)
	case view.Editor:
		return m.editorKey(msg)
	case view.Files:
		return m.filesKey(msg)
	}
	return m, nil
}

func (m AppModel) chatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.prompt.Text())
		if text == "" {
			return m, nil
		}
		m.act.Submit(text)
		m.prompt = m.prompt.Reset()
		return m, nil
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}
	updated, cmd := m.prompt.Update(msg)
	m.prompt = updated.(EditorModel)
	return m, cmd
}

func (m AppModel) previewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PrevTab):
		if f, ok := m.preview.Step(-1); ok {
			m.act.SelectPreview(f)
		}
		return m, nil
	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.Tab):
		if f, ok := m.preview.Step(1); ok {
			m.act.SelectPreview(f)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m AppModel) editorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filePath == "" || m.fileLoading {
		return m, nil
	}
	readOnly := m.snap.Editor.Truncated
	switch {
	case key.Matches(msg, m.keys.Save):
		// Read-only files still go through Save so the refusal is reported.
		m.act.Save()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		if readOnly {
			return m, nil
		}
		m.act.InsertTab(m.fileEd.ByteOffset())
		m.fileEd = m.fileEd.InsertText(editor.TabText)
		return m, nil
	}
	before := m.fileEd.Text()
	updated, cmd := m.fileEd.Update(msg)
	next := updated.(EditorModel)
	if after := next.Text(); after != before {
		if readOnly {
			return m, nil
		}
		m.act.EditContent(after)
	}
	m.fileEd = next
	return m, cmd
}

func (m AppModel) filesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		if f, ok := m.files.Selected(); ok {
			m.act.OpenFile(f.Name)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.files, cmd = m.files.Update(msg)
	return m, cmd
}

func (m AppModel) applySnapshot(s engine.Snapshot) (tea.Model, tea.Cmd) {
	m.snap = s
	if s.Closed {
		return m, tea.Quit
	}
	m.footer = m.footer.WithSnapshot(s)

	var cmd tea.Cmd
	m.chat, cmd = m.chat.SetMessages(s.Messages, s.InFlight, s.Task)
	m.preview = m.preview.SetSnapshot(s)
	m.files = m.files.SetFiles(s.ProjectFiles)
	m.browser = m.browser.SetState(s.Screenshot)

	// The local editor is authoritative while the same file stays open;
	// it reloads when another file opens or a load finishes.
	ed := s.Editor
	if ed.Path != m.filePath || (m.fileLoading && !ed.Loading) {
		m.fileEd = m.fileEd.SetText(ed.Content)
		m.filePath = ed.Path
	}
	m.fileLoading = ed.Loading

	if a, ok := m.overlay.(ActivityModel); ok {
		m.overlay = a.WithData(s.Plan, s.Activity)
	}
	if m.wantModels && s.ModelsLoaded {
		m.wantModels = false
		m.overlay = NewModelSelectorModel(ModelEntries(s.Models), m.height)
	}
	return m, cmd
}

// bodyHeight is the rows between the tab bar and the footer.
func (m AppModel) bodyHeight() int {
	return max(m.height-4, 1)
}

func (m AppModel) layout() AppModel {
	w, h := m.width, m.bodyHeight()
	m.chat = m.chat.SetSize(w, max(h-promptRows-1, 1))
	m.prompt = m.prompt.SetSize(w, promptRows)
	m.preview = m.preview.SetSize(w, h)
	m.fileEd = m.fileEd.SetSize(w, max(h-1, 1))
	m.files = m.files.SetSize(w, h)
	m.browser = m.browser.SetSize(w, h)
	m.footer = m.footer.WithWidth(w)
	return m
}

// View renders the tab bar, the active panel and the footer.
func (m AppModel) View() string {
	if m.width <= 0 {
		return ""
	}
	s := Styles()
	sep := s.Border.Render(strings.Repeat("─", m.width))

	body := m.panel()
	if m.overlay != nil {
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.overlay.View())
	} else {
		body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.tabBar(), body, sep, m.footer.View())
}

func (m AppModel) tabBar() string {
	s := Styles()
	var parts []string
	for i, v := range view.All {
		label := v.Title()
		if v == view.Editor && m.snap.Editor.Dirty {
			label += "*"
		}
		label = "F" + string(rune('1'+i)) + " " + label
		if v == m.snap.View {
			parts = append(parts, s.TabActive.Render(label))
		} else {
			parts = append(parts, s.TabInactive.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (m AppModel) panel() string {
	s := Styles()
	switch m.snap.View {
	case view.Preview:
		return m.preview.View()
	case view.Editor:
		return m.editorPanel()
	case view.Files:
		return m.files.View()
	case view.Browser:
		return m.browser.View()
	default:
		return m.chat.View() + "\n" + s.Border.Render(strings.Repeat("─", m.width)) + "\n" + m.prompt.View()
	}
}

func (m AppModel) editorPanel() string {
	s := Styles()
	ed := m.snap.Editor
	if ed.Path == "" {
		return s.Muted.Render("No file open. Pick one in Files (F4).")
	}
	header := s.Bold.Render(ed.Path)
	if ed.Truncated {
		header += s.Warning.Render("  [truncated, read-only]")
	}
	if ed.Dirty {
		header += s.Warning.Render("  ● modified")
	}
	switch {
	case ed.Saving:
		header += s.Muted.Render("  saving...")
	case ed.SaveStatus == editor.SaveOK:
		header += s.Success.Render("  ✓ saved")
	case ed.SaveStatus == editor.SaveError:
		header += s.Error.Render("  ✗ save failed")
	}
	if ed.Loading {
		return header + "\n" + s.Muted.Render("Loading...")
	}
	if ed.LoadErr != "" {
		return header + "\n" + s.Error.Render(ed.LoadErr)
	}
	return header + "\n" + m.fileEd.View()
}
