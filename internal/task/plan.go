// ABOUTME: Orchestrator plan, step counters and PEOR phase from plan/plan_progress/peor frames
// ABOUTME: Plus a bounded activity log fed by execution_log and agent_thinking frames

package task

import (
	"time"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

// LogLimit bounds the activity log.
const LogLimit = 200

// Plan is the latest plan and its progress.
type Plan struct {
	Steps       []protocol.PlanStep
	Current     int
	CurrentText string

	Total     int
	Completed int
	Failed    int
	Elapsed   time.Duration
	Remaining time.Duration

	Phase        string
	PhaseDetails string
}

// Empty reports whether no plan information has arrived.
func (p Plan) Empty() bool {
	return len(p.Steps) == 0 && p.Total == 0 && p.Phase == ""
}

// ApplyPlan replaces the step list. Counters are recounted from the step
// states until a plan_progress frame reports them.
func ApplyPlan(p Plan, ev protocol.Event) Plan {
	p.Steps = append([]protocol.PlanStep(nil), ev.Plan...)
	if ev.CurrentStep > 0 {
		p.Current = ev.CurrentStep
	}
	p.Total = len(p.Steps)
	p.Completed, p.Failed = 0, 0
	for _, st := range p.Steps {
		switch st.Status {
		case protocol.StepCompleted:
			p.Completed++
		case protocol.StepFailed:
			p.Failed++
		}
	}
	if st, ok := p.Step(p.Current); ok {
		p.CurrentText = st.Description
	}
	return p
}

// ApplyPlanProgress overwrites the counters.
func ApplyPlanProgress(p Plan, ev protocol.Event) Plan {
	p.Total = max(ev.TotalSteps, 0)
	p.Completed = max(ev.CompletedSteps, 0)
	p.Failed = max(ev.FailedSteps, 0)
	p.Elapsed, p.Remaining = ev.Elapsed, ev.Remaining
	if ev.CurrentStepID > 0 {
		p.Current = ev.CurrentStepID
	}
	if ev.CurrentStepDescription != "" {
		p.CurrentText = ev.CurrentStepDescription
	}
	return p
}

// ApplyPhase records the orchestrator's plan/execute/observe/reflect phase.
func ApplyPhase(p Plan, ev protocol.Event) Plan {
	p.Phase, p.PhaseDetails = ev.Phase, ev.Details
	if ev.StepID > 0 {
		p.Current = ev.StepID
		if st, ok := p.Step(ev.StepID); ok {
			p.CurrentText = st.Description
		}
	}
	return p
}

// Step finds a step by id.
func (p Plan) Step(id int) (protocol.PlanStep, bool) {
	for _, st := range p.Steps {
		if st.ID == id {
			return st, true
		}
	}
	return protocol.PlanStep{}, false
}

// Finished counts completed plus failed steps.
func (p Plan) Finished() int { return p.Completed + p.Failed }

// LogEntry is one line of the activity log.
type LogEntry struct {
	At        time.Time
	Level     string
	AgentName string
	Message   string
}

// AppendLog returns entries plus e, keeping the newest LogLimit. The input
// slice is never written, so earlier snapshots stay valid.
func AppendLog(entries []LogEntry, e LogEntry) []LogEntry {
	if e.Message == "" {
		return entries
	}
	start := max(len(entries)+1-LogLimit, 0)
	out := make([]LogEntry, 0, len(entries)-start+1)
	out = append(out, entries[start:]...)
	return append(out, e)
}

// LogFromEvent converts an execution_log or agent_thinking frame.
func LogFromEvent(ev protocol.Event, at time.Time) LogEntry {
	if ev.Type == protocol.EventAgentThinking {
		return LogEntry{At: at, Level: "thinking", AgentName: ev.AgentName, Message: ev.Thinking}
	}
	level := ev.Level
	if level == "" {
		level = "info"
	}
	return LogEntry{At: at, Level: level, AgentName: ev.AgentName, Message: ev.Message}
}
