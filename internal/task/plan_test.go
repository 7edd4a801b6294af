// ABOUTME: Tests for the plan reducers and the bounded activity log
// ABOUTME: Step counters, phase tracking and log trimming without aliasing

package task

import (
	"strconv"
	"testing"
	"time"

	"github.com/mauromedda/seekdeck/internal/protocol"
)

func planFrame() protocol.Event {
	return protocol.Event{
		Type:        protocol.EventPlan,
		CurrentStep: 2,
		Plan: []protocol.PlanStep{
			{ID: 1, Description: "Scaffold", Status: protocol.StepCompleted},
			{ID: 2, Description: "Style", Status: protocol.StepRunning},
			{ID: 3, Description: "Test", Status: protocol.StepFailed},
			{ID: 4, Description: "Ship", Status: protocol.StepPending},
		},
	}
}

func TestApplyPlan_CountsSteps(t *testing.T) {
	t.Parallel()

	ev := planFrame()
	p := ApplyPlan(Plan{}, ev)
	if p.Total != 4 || p.Completed != 1 || p.Failed != 1 || p.Finished() != 2 {
		t.Errorf("counts = %+v", p)
	}
	if p.Current != 2 || p.CurrentText != "Style" {
		t.Errorf("current = %d %q", p.Current, p.CurrentText)
	}

	ev.Plan[0].Description = "mutated"
	if p.Steps[0].Description != "Scaffold" {
		t.Error("plan aliases the frame's step slice")
	}
}

func TestApplyPlanProgress_Overwrites(t *testing.T) {
	t.Parallel()

	p := ApplyPlan(Plan{}, planFrame())
	p = ApplyPlanProgress(p, protocol.Event{
		Type:                   protocol.EventPlanProgress,
		TotalSteps:             4,
		CompletedSteps:         3,
		FailedSteps:            0,
		CurrentStepID:          4,
		CurrentStepDescription: "Ship it",
		Elapsed:                20 * time.Second,
		Remaining:              7 * time.Second,
	})
	if p.Completed != 3 || p.Failed != 0 || p.Current != 4 || p.CurrentText != "Ship it" {
		t.Errorf("plan = %+v", p)
	}
	if p.Remaining != 7*time.Second || len(p.Steps) != 4 {
		t.Errorf("remaining = %v steps = %d", p.Remaining, len(p.Steps))
	}
}

func TestApplyPhase(t *testing.T) {
	t.Parallel()

	p := ApplyPlan(Plan{}, planFrame())
	p = ApplyPhase(p, protocol.Event{Type: protocol.EventPhase, Phase: "execute", StepID: 3, Details: "Test"})
	if p.Phase != "execute" || p.Current != 3 || p.CurrentText != "Test" {
		t.Errorf("phase = %+v", p)
	}
	if (Plan{}).Empty() != true || p.Empty() {
		t.Error("Empty misreports")
	}
}

func TestAppendLog_BoundedAndCopying(t *testing.T) {
	t.Parallel()

	var log []LogEntry
	for i := range LogLimit + 5 {
		log = AppendLog(log, LogEntry{Message: "line " + strconv.Itoa(i)})
	}
	if len(log) != LogLimit {
		t.Fatalf("len = %d; want %d", len(log), LogLimit)
	}
	if log[0].Message != "line 5" || log[LogLimit-1].Message != "line "+strconv.Itoa(LogLimit+4) {
		t.Errorf("kept %q..%q", log[0].Message, log[LogLimit-1].Message)
	}

	held := log
	next := AppendLog(log, LogEntry{Message: "newest"})
	if held[0].Message != "line 5" || next[0].Message != "line 6" {
		t.Error("append rewrote an earlier slice")
	}
	if same := AppendLog(next, LogEntry{}); len(same) != len(next) {
		t.Error("empty messages should be dropped")
	}
}

func TestLogFromEvent(t *testing.T) {
	t.Parallel()

	at := time.Unix(100, 0)
	e := LogFromEvent(protocol.Event{Type: protocol.EventAgentThinking, AgentName: "coder", Thinking: "Processing step 2"}, at)
	if e.Level != "thinking" || e.Message != "Processing step 2" || !e.At.Equal(at) {
		t.Errorf("thinking entry = %+v", e)
	}
	e = LogFromEvent(protocol.Event{Type: protocol.EventExecutionLog, Message: "ok"}, at)
	if e.Level != "info" {
		t.Errorf("default level = %q", e.Level)
	}
}

func TestApplyThinking_ClearedOnCompletion(t *testing.T) {
	t.Parallel()

	s := ApplyThinking(Status{}, protocol.Event{Type: protocol.EventAgentThinking, AgentName: "coder", Thinking: "hm"})
	if s.Thinking != "hm" || s.AgentName != "coder" {
		t.Fatalf("status = %+v", s)
	}
	s = ApplyStatus(s, protocol.Event{Type: protocol.EventStatus, Progress: 1})
	if s.Thinking != "" {
		t.Error("completion should clear the thinking line")
	}
}
