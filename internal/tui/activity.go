// ABOUTME: ActivityModel is an overlay showing the orchestrator plan and the activity log tail
// ABOUTME: The app refreshes it from each snapshot while open; esc returns ActivityDismissMsg

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/task"
)

// ActivityDismissMsg is returned when the user closes the activity overlay.
type ActivityDismissMsg struct{}

// ActivityModel renders plan steps and recent log lines.
type ActivityModel struct {
	plan          task.Plan
	log           []task.LogEntry
	width, height int
}

// NewActivityModel sizes the overlay for a body of width x height.
func NewActivityModel(p task.Plan, log []task.LogEntry, width, height int) ActivityModel {
	return ActivityModel{plan: p, log: log, width: width, height: height}
}

// WithData swaps in fresh plan and log data.
func (m ActivityModel) WithData(p task.Plan, log []task.LogEntry) ActivityModel {
	m.plan, m.log = p, log
	return m
}

// Init implements tea.Model.
func (m ActivityModel) Init() tea.Cmd { return nil }

// Update handles dismiss.
func (m ActivityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		return m, func() tea.Msg { return ActivityDismissMsg{} }
	}
	return m, nil
}

// View renders the box.
func (m ActivityModel) View() string {
	s := Styles()
	inner := max(m.width-6, 20)
	var lines []string

	title := "Activity"
	if label := planLabel(m.plan); label != "" {
		title += "  " + s.Muted.Render(label)
	}
	lines = append(lines, s.Bold.Render(title))
	if m.plan.Elapsed > 0 || m.plan.Remaining > 0 {
		lines = append(lines, s.Muted.Render(fmt.Sprintf("elapsed %s, about %s left",
			m.plan.Elapsed.Round(time.Second), m.plan.Remaining.Round(time.Second))))
	}

	if len(m.plan.Steps) == 0 {
		lines = append(lines, s.Muted.Render("No plan yet"))
	}
	for _, st := range m.plan.Steps {
		glyph, style := stepGlyph(st.Status)
		text := fmt.Sprintf("%d. %s", st.ID, st.Description)
		if st.AgentType != "" {
			text += " (" + st.AgentType + ")"
		}
		if st.ID == m.plan.Current && st.Status != protocol.StepCompleted {
			style = s.Primary
		}
		lines = append(lines, style.Render(glyph+" "+Truncate(text, inner-2)))
	}

	lines = append(lines, "", s.Bold.Render("Log"))
	room := max(m.height-len(lines)-4, 1)
	tail := m.log
	if len(tail) > room {
		tail = tail[len(tail)-room:]
	}
	if len(tail) == 0 {
		lines = append(lines, s.Muted.Render("Nothing logged"))
	}
	for _, e := range tail {
		lines = append(lines, logLine(e, inner))
	}
	return s.Overlay.Width(inner + 2).Render(strings.Join(lines, "\n"))
}

func stepGlyph(status string) (string, lipgloss.Style) {
	s := Styles()
	switch status {
	case protocol.StepCompleted:
		return "✓", s.Success
	case protocol.StepFailed:
		return "✗", s.Error
	case protocol.StepRunning:
		return "▸", s.Primary
	default:
		return "·", s.Muted
	}
}

func logLine(e task.LogEntry, width int) string {
	s := Styles()
	style := s.Secondary
	switch e.Level {
	case "error":
		style = s.Error
	case "warning":
		style = s.Warning
	case "success":
		style = s.Success
	case "thinking":
		style = s.Reasoning
	}
	prefix := e.At.Format("15:04:05") + " "
	if e.AgentName != "" {
		prefix += e.AgentName + ": "
	}
	msg := strings.Join(strings.Fields(e.Message), " ")
	return s.Muted.Render(prefix) + style.Render(Truncate(msg, max(width-VisibleWidth(prefix), 1)))
}
