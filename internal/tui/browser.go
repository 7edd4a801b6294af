// ABOUTME: BrowserModel shows the live screenshot of the agent's browser
// ABOUTME: Renders once per handle and size; Kitty images are deleted when replaced

package tui

import (
	"strconv"
	"strings"

	"github.com/mauromedda/seekdeck/internal/screenshot"
)

// BrowserModel renders the screenshot panel.
type BrowserModel struct {
	proto   screenshot.Protocol
	state   screenshot.State
	lines   []string
	drawnID uint32
	staleID uint32
	width   int
	height  int
}

// NewBrowserModel creates a panel drawing with proto.
func NewBrowserModel(proto screenshot.Protocol) BrowserModel {
	return BrowserModel{proto: proto}
}

// SetSize sets the panel area; the first row is the caption.
func (m BrowserModel) SetSize(w, h int) BrowserModel {
	if w != m.width || h != m.height {
		m.width, m.height = w, h
		m.draw()
	}
	return m
}

// SetState adopts a new screenshot state. Drawing uses the state's frame,
// so a resize after the handle was released still draws the last image.
func (m BrowserModel) SetState(st screenshot.State) BrowserModel {
	changed := st.Frame.ID != m.state.Frame.ID
	m.state = st
	if changed {
		m.draw()
	}
	return m
}

func (m *BrowserModel) draw() {
	f := m.state.Frame
	if m.proto == screenshot.Kitty && m.drawnID != 0 && f.ID != m.drawnID {
		m.staleID = m.drawnID
	}
	m.drawnID = 0
	m.lines = nil
	if f.Empty() || m.width <= 0 || m.height <= 1 {
		return
	}
	m.lines = screenshot.RenderFrame(f, m.proto, m.width, m.height-1)
	if m.proto == screenshot.Kitty {
		m.drawnID = f.ID
	}
}

// View renders the caption and the image.
func (m BrowserModel) View() string {
	s := Styles()
	var b strings.Builder
	if m.staleID != 0 {
		b.WriteString(screenshot.KittyDelete(m.staleID))
	}
	switch {
	case m.state.Stamp.IsZero():
		b.WriteString(s.Muted.Render("Waiting for the first screenshot..."))
	case m.state.Frame.Empty():
		caption := "No screenshot available"
		if m.state.Err != "" {
			caption += " (" + m.state.Err + ")"
		}
		b.WriteString(s.Warning.Render(Truncate(caption, max(m.width, 1))))
	default:
		w, h := m.state.Frame.Size()
		b.WriteString(s.Muted.Render(m.state.Stamp.Format("15:04:05")))
		b.WriteString(s.Dim.Render("  " + strconv.Itoa(w) + "×" + strconv.Itoa(h)))
	}
	for _, l := range m.lines {
		b.WriteString("\n")
		b.WriteString(l)
	}
	return b.String()
}
