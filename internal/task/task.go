// ABOUTME: Task progress reported by status frames, plus the active agent kind
// ABOUTME: Reducers return new values; the engine owns the agent-clear timer

package task

import (
	"math"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

// Status is the latest task progress. It is overwritten, never accumulated.
type Status struct {
	Text      string
	Progress  float64
	Details   string
	AgentName string
	Agent     protocol.AgentKind
	// Thinking is the latest agent_thinking message of the running task.
	Thinking string
}

// Complete reports whether the task reached full progress.
func (s Status) Complete() bool {
	return s.Progress >= 1.0
}

// ApplyStatus overwrites the progress fields from a status frame. The
// active agent kind survives; it only changes through ApplyAgentSwitch.
func ApplyStatus(s Status, ev protocol.Event) Status {
	s.Text = ev.Status
	s.Progress = clamp(ev.Progress)
	s.Details = ev.Details
	if ev.AgentName != "" {
		s.AgentName = ev.AgentName
	}
	if s.Complete() {
		s.Thinking = ""
	}
	return s
}

// ApplyAgentSwitch records the newly active agent.
func ApplyAgentSwitch(s Status, ev protocol.Event) Status {
	s.Agent = ev.AgentType
	if ev.AgentName != "" {
		s.AgentName = ev.AgentName
	}
	return s
}

// ApplyThinking records what the agent says it is doing.
func ApplyThinking(s Status, ev protocol.Event) Status {
	s.Thinking = ev.Thinking
	if ev.AgentName != "" {
		s.AgentName = ev.AgentName
	}
	return s
}

// ClearAgent forgets the active agent kind.
func ClearAgent(s Status) Status {
	s.Agent = protocol.AgentNone
	return s
}

// WithText replaces only the status text.
func WithText(s Status, text string) Status {
	if text != "" {
		s.Text = text
	}
	return s
}

func clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return math.Min(p, 1)
}
