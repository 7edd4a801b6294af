// ABOUTME: FooterModel renders the two-line status bar: connection, task and plan progress, model, notice
// ABOUTME: Segments are measured before styling and dropped from the right when space runs out

package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/seekdeck/internal/engine"
	"github.com/mauromedda/seekdeck/internal/push"
	"github.com/mauromedda/seekdeck/internal/task"
)

const progressCells = 10

// FooterModel is a leaf; the app feeds it snapshots.
type FooterModel struct {
	conn     push.State
	online   bool
	inFlight bool
	task     task.Status
	plan     task.Plan
	model    string
	notice   *engine.Notice
	help     string
	width    int
}

// NewFooterModel creates a footer showing help for keys.
func NewFooterModel(keys KeyMap) FooterModel {
	return FooterModel{help: keys.HelpLine()}
}

// WithWidth sets the render width.
func (m FooterModel) WithWidth(w int) FooterModel { m.width = w; return m }

// WithSnapshot copies the footer fields of a snapshot.
func (m FooterModel) WithSnapshot(s engine.Snapshot) FooterModel {
	m.conn, m.online, m.inFlight, m.task = s.Connection, s.Online, s.InFlight, s.Task
	m.plan = s.Plan
	m.notice = s.Notice
	m.model = ""
	if s.ModelsLoaded && s.Models.CurrentModel != "" {
		m.model = s.Models.CurrentProvider + "/" + s.Models.CurrentModel
	}
	return m
}

type segment struct {
	text  string
	style lipgloss.Style
}

// View renders both lines.
func (m FooterModel) View() string {
	s := Styles()
	var segs []segment

	switch m.conn {
	case push.Connected:
		segs = append(segs, segment{"● live", s.Success})
	case push.Error:
		segs = append(segs, segment{"● error", s.Error})
	default:
		segs = append(segs, segment{"○ offline", s.Warning})
	}
	if m.online {
		segs = append(segs, segment{"backend ok", s.FooterConn})
	} else {
		segs = append(segs, segment{"backend down", s.Error})
	}
	if m.task.Text != "" || m.inFlight {
		text := m.task.Text
		if text == "" {
			text = "Working"
		}
		segs = append(segs, segment{text, s.Primary})
		segs = append(segs, segment{progressBar(m.task.Progress), s.ProgressOn})
	}
	if text := planLabel(m.plan); text != "" {
		segs = append(segs, segment{text, s.Secondary})
	}
	if m.task.Agent != "" || m.task.AgentName != "" {
		label := m.task.AgentName
		if m.task.Agent != "" {
			if label != "" {
				label += " "
			}
			label += "(" + m.task.Agent.Label() + ")"
		}
		segs = append(segs, segment{label, s.Accent})
	}
	if m.model != "" {
		segs = append(segs, segment{m.model, s.FooterModel})
	}

	line1 := joinSegments(segs, m.width)

	var line2 string
	if m.notice != nil {
		style := s.Info
		if m.notice.Level == engine.NoticeError {
			style = s.Error
		}
		line2 = style.Render(m.fit(m.notice.Text))
	} else {
		line2 = m.help
	}
	return line1 + "\n" + line2
}

func (m FooterModel) fit(text string) string {
	if m.width <= 0 {
		return text
	}
	return Truncate(text, m.width)
}

// joinSegments styles segments separated by two spaces, stopping before
// the first one that would overflow width. The last kept text is cut.
func joinSegments(segs []segment, width int) string {
	var b strings.Builder
	used := 0
	for i, sg := range segs {
		sep := 0
		if i > 0 {
			sep = 2
		}
		w := VisibleWidth(sg.text)
		if width > 0 && used+sep+w > width {
			room := width - used - sep
			if room > 3 {
				if i > 0 {
					b.WriteString("  ")
				}
				b.WriteString(sg.style.Render(Truncate(sg.text, room)))
			}
			break
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(sg.style.Render(sg.text))
		used += sep + w
	}
	return b.String()
}

// planLabel summarises orchestrator progress, e.g. "step 3/5 ✗1 · execute".
func planLabel(p task.Plan) string {
	var parts []string
	if p.Total > 0 {
		text := fmt.Sprintf("step %d/%d", min(p.Finished()+1, p.Total), p.Total)
		if p.Finished() >= p.Total {
			text = fmt.Sprintf("%d/%d steps", p.Completed, p.Total)
		}
		if p.Failed > 0 {
			text += fmt.Sprintf(" ✗%d", p.Failed)
		}
		parts = append(parts, text)
	}
	if p.Phase != "" {
		parts = append(parts, p.Phase)
	}
	return strings.Join(parts, " · ")
}

// progressBar draws a fixed-width bar with the percentage.
func progressBar(p float64) string {
	p = math.Max(0, math.Min(1, p))
	on := int(math.Round(p * progressCells))
	return strings.Repeat("█", on) + strings.Repeat("░", progressCells-on) + fmt.Sprintf(" %3.0f%%", p*100)
}
