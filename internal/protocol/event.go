// ABOUTME: Push channel frames: Event type and a hand-written easyjson decoder
// ABOUTME: Unknown fields (timestamp, content, code snippets) are skipped without allocation

package protocol

import (
	"fmt"
	"time"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
)

// EventType names a push frame kind.
type EventType string

// Push frame kinds the client reacts to. Anything else is ignored.
const (
	EventStatus       EventType = "status"
	EventAgentSwitch  EventType = "agent_switch"
	EventExecution    EventType = "execution"
	EventFileUpdate   EventType = "file_update"
	EventPreviewReady EventType = "preview_ready"
	EventPong         EventType = "pong"

	EventPlan          EventType = "plan"
	EventPlanProgress  EventType = "plan_progress"
	EventPhase         EventType = "peor"
	EventAgentThinking EventType = "agent_thinking"
	EventExecutionLog  EventType = "execution_log"
)

// Plan step states reported by the orchestrator.
const (
	StepPending   = "pending"
	StepRunning   = "running"
	StepCompleted = "completed"
	StepFailed    = "failed"
)

// PlanStep is one entry of a plan frame.
type PlanStep struct {
	ID          int
	Description string
	AgentType   string
	Status      string
	Attempts    int
}

// Event is a decoded push frame. Only the fields used by the client are kept.
type Event struct {
	Type EventType

	// status
	Status    string
	Progress  float64
	Details   string
	AgentName string
	Answer    string
	Reasoning string
	UID       string

	// agent_switch
	AgentType AgentKind

	// file_update
	Action   string
	FilePath string

	// preview_ready
	PreviewURL  string
	ProjectType string

	// plan
	Plan        []PlanStep
	CurrentStep int

	// plan_progress
	TotalSteps             int
	CompletedSteps         int
	FailedSteps            int
	CurrentStepID          int
	CurrentStepDescription string
	Elapsed                time.Duration
	Remaining              time.Duration
	SuccessRate            float64

	// peor (plan, execute, observe, reflect, revise); details is shared
	Phase  string
	StepID int

	// agent_thinking
	Thinking string

	// execution_log
	Level   string
	Message string
}

// HasAnswer reports whether a status frame carries a non-blank answer.
func (e *Event) HasAnswer() bool {
	return e.Type == EventStatus && e.Answer != ""
}

// DecodeEvent parses a single push frame.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := easyjson.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode push frame: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("decode push frame: missing type")
	}
	return ev, nil
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler.
func (e *Event) UnmarshalEasyJSON(in *jlexer.Lexer) {
	if in.IsNull() {
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "type":
			e.Type = EventType(in.String())
		case "status":
			e.Status = readText(in)
		case "progress":
			e.Progress = readNumber(in)
		case "details":
			e.Details = readText(in)
		case "agent_name":
			e.AgentName = readText(in)
		case "answer":
			e.Answer = readText(in)
		case "reasoning":
			e.Reasoning = readText(in)
		case "uid":
			e.UID = readText(in)
		case "agent_type":
			e.AgentType = AgentKind(readText(in))
		case "action":
			e.Action = readText(in)
		case "filepath":
			e.FilePath = readText(in)
		case "preview_url":
			e.PreviewURL = readText(in)
		case "project_type":
			e.ProjectType = readText(in)
		case "plan":
			e.Plan = readPlan(in)
		case "current_step":
			e.CurrentStep = int(readNumber(in))
		case "total_steps":
			e.TotalSteps = int(readNumber(in))
		case "completed_steps":
			e.CompletedSteps = int(readNumber(in))
		case "failed_steps":
			e.FailedSteps = int(readNumber(in))
		case "current_step_id":
			e.CurrentStepID = int(readNumber(in))
		case "current_step_description":
			e.CurrentStepDescription = readText(in)
		case "elapsed_time":
			e.Elapsed = readSeconds(in)
		case "estimated_remaining":
			e.Remaining = readSeconds(in)
		case "success_rate":
			e.SuccessRate = readNumber(in)
		case "phase":
			e.Phase = readText(in)
		case "step_id":
			e.StepID = int(readNumber(in))
		case "thinking_message":
			e.Thinking = readText(in)
		case "level":
			e.Level = readText(in)
		case "message":
			e.Message = readText(in)
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()
}

// readPlan decodes the step list of a plan frame. Anything but an array
// yields no steps.
func readPlan(in *jlexer.Lexer) []PlanStep {
	if !in.IsDelim('[') {
		in.SkipRecursive()
		return nil
	}
	steps := []PlanStep{}
	in.Delim('[')
	for !in.IsDelim(']') {
		var st PlanStep
		st.unmarshal(in)
		steps = append(steps, st)
		in.WantComma()
	}
	in.Delim(']')
	return steps
}

func (st *PlanStep) unmarshal(in *jlexer.Lexer) {
	if !in.IsDelim('{') {
		in.SkipRecursive()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "id":
			st.ID = int(readNumber(in))
		case "description":
			st.Description = readText(in)
		case "agent_type":
			st.AgentType = readText(in)
		case "status":
			st.Status = readText(in)
		case "attempts":
			st.Attempts = int(readNumber(in))
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
}

// readSeconds reads a number of seconds as a duration.
func readSeconds(in *jlexer.Lexer) time.Duration {
	v := readNumber(in)
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

// readText accepts a string or any scalar and renders it as text.
func readText(in *jlexer.Lexer) string {
	switch v := in.Interface().(type) {
	case string:
		return v
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// readNumber accepts a JSON number or a numeric string.
func readNumber(in *jlexer.Lexer) float64 {
	switch v := in.Interface().(type) {
	case float64:
		return v
	case string:
		var f float64
		if _, err := fmt.Sscan(v, &f); err == nil {
			return f
		}
	}
	return 0
}

// EncodePing returns the heartbeat frame.
func EncodePing() []byte {
	return []byte(`{"type":"ping"}`)
}
