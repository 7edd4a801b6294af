// ABOUTME: Tests for normalisation, the exactly-once reducer and failure notices
// ABOUTME: Covers blank and duplicate answers arriving from different channels

package transcript

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mauromedda/seekdeck/internal/backend"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
	}{
		{"Hello World.", "hello   world"},
		{"  Done!  ", "done"},
		{"Yes?", "YES"},
		{"line one\n\tline two,", "line one line two"},
		{"café", "café"},
	}
	for _, tt := range tests {
		if Normalize(tt.a) != Normalize(tt.b) {
			t.Errorf("Normalize(%q)=%q != Normalize(%q)=%q", tt.a, Normalize(tt.a), tt.b, Normalize(tt.b))
		}
	}

	if Normalize("hello world") == Normalize("hello, world") {
		t.Error("inner punctuation must be kept")
	}
	if got := Normalize("Wow...!!"); got != "wow" {
		t.Errorf("Normalize(Wow...!!) = %q; want %q", got, "wow")
	}
}

func TestIngest_DropsBlank(t *testing.T) {
	t.Parallel()

	var tr Transcript
	for _, blank := range []string{"", "   ", "\n\t"} {
		next, _, ok := Ingest(tr, Candidate{Answer: blank})
		if ok || next.Len() != 0 {
			t.Errorf("blank answer %q was appended", blank)
		}
	}
}

func TestIngest_ExactlyOnceAcrossChannels(t *testing.T) {
	t.Parallel()

	var tr Transcript
	tr, _ = AppendUser(tr, "build a page")

	// Same answer arriving via push, polling, then the query response.
	arrivals := []Candidate{
		{Answer: "Here is your page.", AgentName: "Coder", Status: "Done"},
		{Answer: "here is your page", AgentName: "Coder"},
		{Answer: "  Here is   your page!", AgentName: "None"},
	}
	appended := 0
	for _, c := range arrivals {
		var ok bool
		tr, _, ok = Ingest(tr, c)
		if ok {
			appended++
		}
	}
	if appended != 1 {
		t.Fatalf("appended = %d; want 1", appended)
	}
	if tr.Len() != 2 {
		t.Fatalf("Len = %d; want 2", tr.Len())
	}
	last, _ := tr.Last()
	if last.Kind != KindAgent || last.AgentName != "Coder" || last.Status != "Done" {
		t.Errorf("last = %+v", last)
	}
}

func TestIngest_DefaultAgentName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "None", "  "} {
		_, m, ok := Ingest(Transcript{}, Candidate{Answer: "hi", AgentName: name})
		if !ok || m.AgentName != DefaultAgentName {
			t.Errorf("AgentName %q -> %q", name, m.AgentName)
		}
	}
}

func TestIngest_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	base, _, _ := Ingest(Transcript{}, Candidate{Answer: "first"})
	next, _, _ := Ingest(base, Candidate{Answer: "second"})

	if base.Len() != 1 || base.Contains("second") {
		t.Error("Ingest mutated its input transcript")
	}
	if next.Len() != 2 || !next.Contains("SECOND.") {
		t.Error("new transcript missing appended entry")
	}
}

func TestUserMessagesNeverDeduped(t *testing.T) {
	t.Parallel()

	var tr Transcript
	tr, a := AppendUser(tr, "same")
	tr, b := AppendUser(tr, "same")
	if tr.Len() != 2 {
		t.Fatalf("Len = %d; want 2", tr.Len())
	}
	if a.UID == "" || a.UID == b.UID {
		t.Errorf("user UIDs %q and %q should be distinct", a.UID, b.UID)
	}
	// A user message does not block an identical agent answer.
	if _, _, ok := Ingest(tr, Candidate{Answer: "same"}); !ok {
		t.Error("agent answer equal to a user query was dropped")
	}
}

func TestFailureNotice_Precedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured answer wins", fmt.Errorf("POST /query: %w", &backend.APIError{Status: 503, Answer: "Set OPENAI_API_KEY."}), "Set OPENAI_API_KEY."},
		{"not ready", fmt.Errorf("POST /query: %w", &backend.APIError{Status: 503}), NotReadyText},
		{"rate limited", &backend.APIError{Status: 429}, RateLimitedText},
		{"other status", &backend.APIError{Status: 500, Message: "boom"}, GenericFailText},
		{"transport", errors.New("connection refused"), GenericFailText},
	}
	for _, tt := range tests {
		if got := FailureNotice(tt.err); got != tt.want {
			t.Errorf("%s: got %q; want %q", tt.name, got, tt.want)
		}
	}
}
