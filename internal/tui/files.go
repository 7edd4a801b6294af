// ABOUTME: FilesModel lists project files with a fuzzy filter and humanised sizes
// ABOUTME: Enter on a row is handled by the app, which opens the file in the editor

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

type fileRow struct {
	file    protocol.ProjectFile
	matched []int
}

// fileSource adapts project files to fuzzy.Source.
type fileSource []protocol.ProjectFile

func (s fileSource) String(i int) string { return s[i].Name }
func (s fileSource) Len() int            { return len(s) }

// FilesModel is the project file browser.
type FilesModel struct {
	filter textinput.Model
	files  []protocol.ProjectFile
	rows   []fileRow
	cursor int
	top    int
	width  int
	height int
}

// NewFilesModel creates an empty file list with a focused filter.
func NewFilesModel() FilesModel {
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "type to narrow"
	ti.Focus()
	return FilesModel{filter: ti}
}

// SetSize sets the panel area; the first row is the filter.
func (m FilesModel) SetSize(w, h int) FilesModel {
	m.width, m.height = w, h
	m.filter.Width = max(w-10, 1)
	m.clampCursor()
	return m
}

// SetFiles replaces the listing and re-applies the filter.
func (m FilesModel) SetFiles(files []protocol.ProjectFile) FilesModel {
	m.files = files
	m.refilter()
	return m
}

// Selected returns the file under the cursor.
func (m FilesModel) Selected() (protocol.ProjectFile, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return protocol.ProjectFile{}, false
	}
	return m.rows[m.cursor].file, true
}

// Update moves the cursor or edits the filter.
func (m FilesModel) Update(msg tea.Msg) (FilesModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp:
			m.cursor--
			m.clampCursor()
			return m, nil
		case tea.KeyDown:
			m.cursor++
			m.clampCursor()
			return m, nil
		case tea.KeyPgUp:
			m.cursor -= m.listHeight()
			m.clampCursor()
			return m, nil
		case tea.KeyPgDown:
			m.cursor += m.listHeight()
			m.clampCursor()
			return m, nil
		}
	}
	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.cursor = 0
		m.refilter()
	}
	return m, cmd
}

// View renders the filter and the visible rows.
func (m FilesModel) View() string {
	s := Styles()
	var b strings.Builder
	b.WriteString(m.filter.View())
	if len(m.rows) == 0 {
		b.WriteString("\n")
		if len(m.files) == 0 {
			b.WriteString(s.Muted.Render("No project files"))
		} else {
			b.WriteString(s.Muted.Render("No matches"))
		}
		return b.String()
	}
	sizeW := 9
	nameW := max(m.width-sizeW-4, 8)
	end := min(len(m.rows), m.top+m.listHeight())
	for i := m.top; i < end; i++ {
		r := m.rows[i]
		name := highlight(PadRight(r.file.Name, nameW), r.matched)
		size := fmt.Sprintf("%*s", sizeW, humanize.Bytes(uint64(r.file.Size)))
		line := IconFor(r.file.Name).Render() + " " + name + " " + s.Muted.Render(size)
		if i == m.cursor {
			line = s.Selection.Render("▸") + line
		} else {
			line = " " + line
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

func (m *FilesModel) refilter() {
	pattern := strings.TrimSpace(m.filter.Value())
	m.rows = m.rows[:0]
	if pattern == "" {
		for _, f := range m.files {
			m.rows = append(m.rows, fileRow{file: f})
		}
	} else {
		for _, match := range fuzzy.FindFrom(pattern, fileSource(m.files)) {
			m.rows = append(m.rows, fileRow{file: m.files[match.Index], matched: match.MatchedIndexes})
		}
	}
	m.clampCursor()
}

func (m *FilesModel) listHeight() int {
	return max(m.height-1, 1)
}

func (m *FilesModel) clampCursor() {
	m.cursor = max(min(m.cursor, len(m.rows)-1), 0)
	h := m.listHeight()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+h {
		m.top = m.cursor - h + 1
	}
}

// highlight bolds the matched byte positions of a plain name.
func highlight(name string, matched []int) string {
	if len(matched) == 0 {
		return name
	}
	s := Styles()
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range name {
		if hit[i] {
			b.WriteString(s.Accent.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
