// ABOUTME: Tests for the activity overlay and its wiring into AppModel
// ABOUTME: Plan step glyphs, log tail trimming, refresh on snapshot and dismiss

package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/seekdeck/internal/engine"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/task"
)

var logTime = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func samplePlan() task.Plan {
	return task.Plan{
		Steps: []protocol.PlanStep{
			{ID: 1, Description: "Write index.html", AgentType: "code", Status: protocol.StepCompleted},
			{ID: 2, Description: "Style the page", Status: protocol.StepFailed},
			{ID: 3, Description: "Check the result", Status: protocol.StepRunning},
			{ID: 4, Description: "Report back", Status: protocol.StepPending},
		},
		Current: 3,
		Total:   4, Completed: 1, Failed: 1,
		Phase: "execute",
	}
}

func TestActivityModel_View(t *testing.T) {
	t.Parallel()

	log := []task.LogEntry{
		{At: logTime, Level: "info", AgentName: "Coder", Message: "wrote index.html"},
		{At: logTime, Level: "thinking", Message: "the page needs\na header"},
	}
	out := NewActivityModel(samplePlan(), log, 100, 30).View()
	for _, want := range []string{
		"Activity", "step 3/4 ✗1 · execute",
		"✓ 1. Write index.html (code)", "✗ 2. Style the page", "▸ 3. Check the result", "· 4. Report back",
		"10:30:00 Coder: wrote index.html",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestActivityModel_EmptyAndTail(t *testing.T) {
	t.Parallel()

	out := NewActivityModel(task.Plan{}, nil, 80, 20).View()
	if !strings.Contains(out, "No plan yet") || !strings.Contains(out, "Nothing logged") {
		t.Errorf("empty view = %q", out)
	}

	var log []task.LogEntry
	for i := range 50 {
		log = append(log, task.LogEntry{At: logTime, Message: fmt.Sprintf("line-%02d", i)})
	}
	out = NewActivityModel(task.Plan{}, log, 80, 20).View()
	if !strings.Contains(out, "line-49") {
		t.Error("newest log line missing")
	}
	if strings.Contains(out, "line-00") {
		t.Error("oldest log line should be trimmed to the overlay height")
	}
}

func TestAppModel_ActivityOverlay(t *testing.T) {
	t.Parallel()
	m, _ := newTestApp(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if _, ok := m.overlay.(ActivityModel); !ok {
		t.Fatalf("overlay = %T; want ActivityModel", m.overlay)
	}
	if !strings.Contains(m.View(), "No plan yet") {
		t.Error("activity overlay not rendered")
	}

	m, _ = send(t, m, SnapshotMsg{Snapshot: engine.Snapshot{
		Plan:     samplePlan(),
		Activity: []task.LogEntry{{At: logTime, Message: "deploying"}},
	}})
	out := m.View()
	if !strings.Contains(out, "Check the result") || !strings.Contains(out, "deploying") {
		t.Errorf("overlay not refreshed from snapshot:\n%s", out)
	}

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc produced no command")
	}
	m, _ = send(t, m, cmd())
	if m.overlay != nil {
		t.Error("overlay still open after esc")
	}
}
