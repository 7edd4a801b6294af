// ABOUTME: EditorModel is a multi-line rune editor used for the prompt and the file editor
// ABOUTME: Value semantics; the undo stack and kill ring are shared pointers like bubbles/textarea

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	killRingSize    = 16
	editorUndoDepth = 200
)

// CursorMarker is the visible block cursor.
const CursorMarker = "█"

type killRing struct {
	entries []string
	pos     int
}

func (kr *killRing) push(text string) {
	if len(kr.entries) < killRingSize {
		kr.entries = append(kr.entries, text)
	} else {
		kr.entries[kr.pos] = text
	}
	kr.pos = (kr.pos + 1) % killRingSize
}

func (kr *killRing) yank() string {
	if len(kr.entries) == 0 {
		return ""
	}
	return kr.entries[(kr.pos-1+len(kr.entries))%len(kr.entries)]
}

type editorState struct {
	lines    [][]rune
	row, col int
}

type undoStack struct {
	items []editorState
}

func (s *undoStack) push(st editorState) {
	if len(s.items) >= editorUndoDepth {
		s.items = s.items[1:]
	}
	s.items = append(s.items, st)
}

func (s *undoStack) pop() (editorState, bool) {
	if len(s.items) == 0 {
		return editorState{}, false
	}
	st := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return st, true
}

// EditorModel is a line-oriented text editor. Enter inserts a newline;
// callers that submit on Enter intercept it first.
type EditorModel struct {
	lines       [][]rune
	row, col    int
	top         int
	focused     bool
	gutter      bool
	prompt      string
	placeholder string
	width       int
	height      int
	ring        *killRing
	undo        *undoStack
}

// NewEditorModel creates an empty editor.
func NewEditorModel() EditorModel {
	return EditorModel{
		lines: [][]rune{{}},
		ring:  &killRing{},
		undo:  &undoStack{},
	}
}

// Init implements tea.Model.
func (m EditorModel) Init() tea.Cmd { return nil }

// Update handles key and size messages.
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.dispatchKey(msg)
		m.scrollToCursor()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// SetFocused toggles the cursor.
func (m EditorModel) SetFocused(f bool) EditorModel { m.focused = f; return m }

// SetPrompt sets the first-line prefix.
func (m EditorModel) SetPrompt(p string) EditorModel { m.prompt = p; return m }

// SetPlaceholder sets the text shown while empty.
func (m EditorModel) SetPlaceholder(p string) EditorModel { m.placeholder = p; return m }

// SetGutter toggles line numbers.
func (m EditorModel) SetGutter(on bool) EditorModel { m.gutter = on; return m }

// SetSize sets the render area. A zero height shows every line.
func (m EditorModel) SetSize(w, h int) EditorModel {
	m.width, m.height = w, h
	m.scrollToCursor()
	return m
}

// Text returns the content with newline separators.
func (m EditorModel) Text() string {
	parts := make([]string, len(m.lines))
	for i, l := range m.lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the content and moves the cursor to the start.
func (m EditorModel) SetText(s string) EditorModel {
	raw := strings.Split(s, "\n")
	m.lines = make([][]rune, len(raw))
	for i, l := range raw {
		m.lines[i] = []rune(l)
	}
	m.row, m.col, m.top = 0, 0, 0
	m.undo = &undoStack{}
	return m
}

// Reset clears the content.
func (m EditorModel) Reset() EditorModel { return m.SetText("") }

// IsEmpty reports whether the editor holds no text.
func (m EditorModel) IsEmpty() bool {
	return len(m.lines) == 1 && len(m.lines[0]) == 0
}

// CursorPos returns the row and rune column of the cursor.
func (m EditorModel) CursorPos() (int, int) { return m.row, m.col }

// ByteOffset returns the cursor position as a byte offset into Text().
func (m EditorModel) ByteOffset() int {
	off := 0
	for i := 0; i < m.row; i++ {
		off += len(string(m.lines[i])) + 1
	}
	return off + len(string(m.lines[m.row][:m.col]))
}

// SetByteOffset moves the cursor to a byte offset into Text(), clamped.
func (m EditorModel) SetByteOffset(off int) EditorModel {
	if off < 0 {
		off = 0
	}
	for i, l := range m.lines {
		n := len(string(l))
		if off <= n || i == len(m.lines)-1 {
			m.row = i
			m.col = len([]rune(string(l)[:min(off, n)]))
			m.scrollToCursor()
			return m
		}
		off -= n + 1
	}
	return m
}

// InsertText inserts s at the cursor.
func (m EditorModel) InsertText(s string) EditorModel {
	m.saveUndo()
	m.insertString(s)
	m.scrollToCursor()
	return m
}

// View renders the visible lines with the cursor.
func (m EditorModel) View() string {
	if m.width <= 0 {
		return ""
	}
	s := Styles()
	if m.focused && m.IsEmpty() && m.placeholder != "" {
		return m.prompt + CursorMarker + s.Dim.Render(m.placeholder)
	}

	first, last := 0, len(m.lines)
	if m.height > 0 {
		first = m.top
		last = min(len(m.lines), m.top+m.height)
	}
	gw := 0
	if m.gutter {
		gw = len(fmt.Sprint(len(m.lines))) + 1
	}
	pw := VisibleWidth(m.prompt)
	textW := max(m.width-pw-gw, 1)

	var b strings.Builder
	for i := first; i < last; i++ {
		if i > first {
			b.WriteByte('\n')
		}
		if i == 0 {
			b.WriteString(m.prompt)
		} else {
			b.WriteString(strings.Repeat(" ", pw))
		}
		if m.gutter {
			b.WriteString(s.Muted.Render(fmt.Sprintf("%*d ", gw-1, i+1)))
		}
		if m.focused && i == m.row {
			b.WriteString(cursorLine(m.lines[i], m.col, textW))
		} else {
			b.WriteString(Truncate(string(m.lines[i]), textW))
		}
	}
	return b.String()
}

// cursorLine draws line with the cursor, scrolling horizontally so the
// cursor stays visible.
func cursorLine(line []rune, col, w int) string {
	start := 0
	if col >= w {
		start = col - w + 1
	}
	before := string(line[start:col])
	after := ""
	if col < len(line) {
		after = string(line[col:])
	}
	return Truncate(before+CursorMarker+after, w)
}

func (m *EditorModel) dispatchKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		m.saveUndo()
		m.insertString(string(msg.Runes))
	case tea.KeySpace:
		m.saveUndo()
		m.insertRunes([]rune{' '})
	case tea.KeyEnter:
		m.saveUndo()
		m.splitLine()
	case tea.KeyBackspace:
		m.backspace()
	case tea.KeyDelete:
		m.deleteForward()
	case tea.KeyLeft:
		if m.col > 0 {
			m.col--
		} else if m.row > 0 {
			m.row--
			m.col = len(m.lines[m.row])
		}
	case tea.KeyRight:
		if m.col < len(m.lines[m.row]) {
			m.col++
		} else if m.row < len(m.lines)-1 {
			m.row++
			m.col = 0
		}
	case tea.KeyUp:
		if m.row > 0 {
			m.row--
			m.col = min(m.col, len(m.lines[m.row]))
		}
	case tea.KeyDown:
		if m.row < len(m.lines)-1 {
			m.row++
			m.col = min(m.col, len(m.lines[m.row]))
		}
	case tea.KeyPgUp:
		m.row = max(m.row-max(m.height, 1), 0)
		m.col = min(m.col, len(m.lines[m.row]))
	case tea.KeyPgDown:
		m.row = min(m.row+max(m.height, 1), len(m.lines)-1)
		m.col = min(m.col, len(m.lines[m.row]))
	case tea.KeyHome, tea.KeyCtrlA:
		m.col = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.col = len(m.lines[m.row])
	case tea.KeyCtrlK:
		m.killToEnd()
	case tea.KeyCtrlY:
		if text := m.ring.yank(); text != "" {
			m.saveUndo()
			m.insertRunes([]rune(text))
		}
	case tea.KeyCtrlZ:
		if st, ok := m.undo.pop(); ok {
			m.lines, m.row, m.col = st.lines, st.row, st.col
		}
	}
}

// insertString inserts text that may span several lines.
func (m *EditorModel) insertString(s string) {
	for i, part := range strings.Split(s, "\n") {
		if i > 0 {
			m.splitLine()
		}
		m.insertRunes([]rune(part))
	}
}

func (m *EditorModel) insertRunes(rs []rune) {
	line := m.lines[m.row]
	next := make([]rune, 0, len(line)+len(rs))
	next = append(next, line[:m.col]...)
	next = append(next, rs...)
	next = append(next, line[m.col:]...)
	m.lines[m.row] = next
	m.col += len(rs)
}

func (m *EditorModel) splitLine() {
	line := m.lines[m.row]
	before := append([]rune(nil), line[:m.col]...)
	after := append([]rune(nil), line[m.col:]...)
	lines := make([][]rune, 0, len(m.lines)+1)
	lines = append(lines, m.lines[:m.row]...)
	lines = append(lines, before, after)
	lines = append(lines, m.lines[m.row+1:]...)
	m.lines = lines
	m.row++
	m.col = 0
}

func (m *EditorModel) backspace() {
	if m.col > 0 {
		m.saveUndo()
		line := m.lines[m.row]
		m.lines[m.row] = append(append([]rune(nil), line[:m.col-1]...), line[m.col:]...)
		m.col--
		return
	}
	if m.row == 0 {
		return
	}
	m.saveUndo()
	prev := len(m.lines[m.row-1])
	m.lines[m.row-1] = append(append([]rune(nil), m.lines[m.row-1]...), m.lines[m.row]...)
	m.lines = append(m.lines[:m.row], m.lines[m.row+1:]...)
	m.row--
	m.col = prev
}

func (m *EditorModel) deleteForward() {
	line := m.lines[m.row]
	if m.col < len(line) {
		m.saveUndo()
		m.lines[m.row] = append(append([]rune(nil), line[:m.col]...), line[m.col+1:]...)
		return
	}
	if m.row >= len(m.lines)-1 {
		return
	}
	m.saveUndo()
	m.lines[m.row] = append(append([]rune(nil), line...), m.lines[m.row+1]...)
	m.lines = append(m.lines[:m.row+1], m.lines[m.row+2:]...)
}

func (m *EditorModel) killToEnd() {
	line := m.lines[m.row]
	if m.col >= len(line) {
		return
	}
	m.saveUndo()
	m.ring.push(string(line[m.col:]))
	m.lines[m.row] = append([]rune(nil), line[:m.col]...)
}

func (m *EditorModel) saveUndo() {
	lines := make([][]rune, len(m.lines))
	for i, l := range m.lines {
		lines[i] = append([]rune(nil), l...)
	}
	m.undo.push(editorState{lines: lines, row: m.row, col: m.col})
}

func (m *EditorModel) scrollToCursor() {
	if m.height <= 0 {
		m.top = 0
		return
	}
	if m.row < m.top {
		m.top = m.row
	}
	if m.row >= m.top+m.height {
		m.top = m.row - m.height + 1
	}
}
