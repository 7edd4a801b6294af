// ABOUTME: Tests for FooterModel rendering
// ABOUTME: Connection labels, progress bar, notice line and width limits

package tui

import (
	"strings"
	"testing"

	"github.com/mauromedda/seekdeck/internal/engine"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/push"
	"github.com/mauromedda/seekdeck/internal/task"
)

func TestProgressBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    float64
		want string
	}{
		{0, "░░░░░░░░░░   0%"},
		{0.5, "█████░░░░░  50%"},
		{1, "██████████ 100%"},
		{3, "██████████ 100%"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.p); got != tt.want {
			t.Errorf("progressBar(%v) = %q; want %q", tt.p, got, tt.want)
		}
	}
}

func TestFooterModel_View(t *testing.T) {
	t.Parallel()

	snap := engine.Snapshot{
		Connection: push.Connected,
		Online:     true,
		InFlight:   true,
		Task: task.Status{
			Text:      "Writing code",
			Progress:  0.4,
			AgentName: "Coder",
			Agent:     protocol.AgentCode,
		},
		ModelsLoaded: true,
		Models:       protocol.ModelConfig{CurrentProvider: "groq", CurrentModel: "llama"},
	}
	f := NewFooterModel(DefaultKeyMap()).WithWidth(200).WithSnapshot(snap)
	out := f.View()
	for _, want := range []string{"live", "backend ok", "Writing code", "40%", "Coder", "groq/llama"} {
		if !strings.Contains(out, want) {
			t.Errorf("footer missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "F1") {
		t.Error("help line missing without a notice")
	}

	snap.Notice = &engine.Notice{ID: 1, Level: engine.NoticeError, Text: "Backend is busy"}
	snap.Connection = push.Disconnected
	out = NewFooterModel(DefaultKeyMap()).WithWidth(200).WithSnapshot(snap).View()
	if !strings.Contains(out, "offline") || !strings.Contains(out, "Backend is busy") {
		t.Errorf("footer = %q", out)
	}
}

func TestFooterModel_RespectsWidth(t *testing.T) {
	t.Parallel()

	snap := engine.Snapshot{
		Task:   task.Status{Text: strings.Repeat("long status ", 20)},
		Notice: &engine.Notice{Text: strings.Repeat("notice ", 30)},
	}
	out := NewFooterModel(DefaultKeyMap()).WithWidth(40).WithSnapshot(snap).View()
	for i, line := range strings.Split(out, "\n") {
		if w := VisibleWidth(line); w > 40 {
			t.Errorf("line %d width %d > 40: %q", i, w, line)
		}
	}
}

func TestPlanLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		plan task.Plan
		want string
	}{
		{"empty", task.Plan{}, ""},
		{"phase only", task.Plan{Phase: "plan"}, "plan"},
		{"running", task.Plan{Total: 5, Completed: 2, Phase: "execute"}, "step 3/5 · execute"},
		{"with failures", task.Plan{Total: 5, Completed: 2, Failed: 1}, "step 4/5 ✗1"},
		{"done", task.Plan{Total: 3, Completed: 2, Failed: 1}, "2/3 steps ✗1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := planLabel(tt.plan); got != tt.want {
				t.Errorf("planLabel = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestFooterModel_ShowsPlan(t *testing.T) {
	t.Parallel()

	snap := engine.Snapshot{InFlight: true, Plan: task.Plan{Total: 4, Completed: 1, Phase: "observe"}}
	out := NewFooterModel(DefaultKeyMap()).WithWidth(200).WithSnapshot(snap).View()
	if !strings.Contains(out, "step 2/4 · observe") {
		t.Errorf("footer = %q", out)
	}
}
