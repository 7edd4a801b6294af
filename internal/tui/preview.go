// ABOUTME: PreviewModel shows preview file tabs and the selected artifact as text
// ABOUTME: HTML bodies are flattened to readable text; binary bodies show a size line

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/mauromedda/seekdeck/internal/engine"
)

// PreviewModel renders the preview panel.
type PreviewModel struct {
	vp       viewport.Model
	files    []string
	main     string
	selected string
	body     string
	ctype    string
	loading  bool
	width    int
}

// NewPreviewModel creates an empty preview panel.
func NewPreviewModel() PreviewModel {
	return PreviewModel{vp: viewport.New(0, 0)}
}

// SetSize sets the panel area; the first row holds the tabs.
func (m PreviewModel) SetSize(w, h int) PreviewModel {
	m.width = w
	m.vp.Width = w
	m.vp.Height = max(h-2, 1)
	m.vp.SetContent(m.content())
	return m
}

// SetSnapshot copies the preview fields of a snapshot.
func (m PreviewModel) SetSnapshot(s engine.Snapshot) PreviewModel {
	changed := s.PreviewBody != m.body || s.PreviewType != m.ctype || s.SelectedPreview != m.selected || s.PreviewLoading != m.loading
	m.files, m.main = s.PreviewFiles, s.PreviewMain
	m.selected, m.body, m.ctype, m.loading = s.SelectedPreview, s.PreviewBody, s.PreviewType, s.PreviewLoading
	if changed {
		m.vp.SetContent(m.content())
		m.vp.GotoTop()
	}
	return m
}

// Step returns the file next to the selection, wrapping around. With no
// selection it starts at the main file.
func (m PreviewModel) Step(delta int) (string, bool) {
	if len(m.files) == 0 {
		return "", false
	}
	cur := -1
	for i, f := range m.files {
		if f == m.selected {
			cur = i
		}
	}
	if cur < 0 {
		for i, f := range m.files {
			if f == m.main {
				return m.files[i], true
			}
		}
		return m.files[0], true
	}
	next := (cur + delta + len(m.files)) % len(m.files)
	return m.files[next], true
}

// Update scrolls the viewport.
func (m PreviewModel) Update(msg tea.Msg) (PreviewModel, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders tabs and body.
func (m PreviewModel) View() string {
	return m.tabs() + "\n" + m.vp.View()
}

func (m PreviewModel) tabs() string {
	s := Styles()
	if len(m.files) == 0 {
		return s.Muted.Render("No preview files yet")
	}
	var b strings.Builder
	used := 0
	for _, f := range m.files {
		label := f
		if f == m.main {
			label += " ★"
		}
		w := VisibleWidth(label) + 2
		if m.width > 0 && used+w > m.width {
			b.WriteString(s.Muted.Render("…"))
			break
		}
		used += w
		if f == m.selected {
			b.WriteString(s.TabActive.Render(label))
		} else {
			b.WriteString(s.TabInactive.Render(label))
		}
	}
	return b.String()
}

func (m PreviewModel) content() string {
	s := Styles()
	switch {
	case m.selected == "":
		return s.Muted.Render("Select a file with ← →")
	case m.loading:
		return s.Muted.Render("Loading " + m.selected + "...")
	case strings.HasPrefix(m.ctype, "image/"), strings.HasPrefix(m.ctype, "application/octet-stream"):
		return s.Muted.Render(fmt.Sprintf("%s (%s, %s)", m.selected, m.ctype, humanize.Bytes(uint64(len(m.body)))))
	case strings.Contains(m.ctype, "html") || strings.HasSuffix(strings.ToLower(m.selected), ".html"):
		return HTMLToText(m.body)
	default:
		return m.body
	}
}
