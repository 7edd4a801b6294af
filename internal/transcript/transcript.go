// ABOUTME: Append-only conversation transcript and the exactly-once answer reducer
// ABOUTME: Answers from push, polling and query responses dedupe on normalised content

package transcript

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Kind distinguishes who produced a message.
type Kind int

const (
	KindUser Kind = iota
	KindAgent
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAgent:
		return "agent"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultAgentName labels answers that arrive without an agent name.
const DefaultAgentName = "Agent"

// Message is one transcript entry. Messages are never mutated once appended.
type Message struct {
	Kind      Kind
	Content   string
	Reasoning string
	AgentName string
	Status    string
	UID       string
}

// Transcript is an ordered, append-only list of messages. Values are shared
// between snapshots, so every append copies.
type Transcript struct {
	msgs []Message
	// seen holds the normalised content of every agent entry.
	seen map[string]struct{}
}

// Len returns the number of messages.
func (t Transcript) Len() int { return len(t.msgs) }

// Messages returns a copy of the messages.
func (t Transcript) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Last returns the most recent message.
func (t Transcript) Last() (Message, bool) {
	if len(t.msgs) == 0 {
		return Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}

// Contains reports whether an agent entry with the same normalised content exists.
func (t Transcript) Contains(answer string) bool {
	_, ok := t.seen[Normalize(answer)]
	return ok
}

func (t Transcript) append(m Message) Transcript {
	msgs := make([]Message, len(t.msgs), len(t.msgs)+1)
	copy(msgs, t.msgs)
	msgs = append(msgs, m)

	seen := t.seen
	if m.Kind == KindAgent {
		seen = make(map[string]struct{}, len(t.seen)+1)
		for k := range t.seen {
			seen[k] = struct{}{}
		}
		seen[Normalize(m.Content)] = struct{}{}
	}
	return Transcript{msgs: msgs, seen: seen}
}

// Candidate is an answer arriving from any channel.
type Candidate struct {
	Answer    string
	Reasoning string
	AgentName string
	Status    string
	UID       string
}

// Ingest appends c as an agent message unless it is blank or duplicates an
// existing agent entry. It reports the appended message.
func Ingest(t Transcript, c Candidate) (Transcript, Message, bool) {
	if strings.TrimSpace(c.Answer) == "" {
		return t, Message{}, false
	}
	if t.Contains(c.Answer) {
		return t, Message{}, false
	}
	name := strings.TrimSpace(c.AgentName)
	if name == "" || name == "None" {
		name = DefaultAgentName
	}
	m := Message{
		Kind:      KindAgent,
		Content:   c.Answer,
		Reasoning: c.Reasoning,
		AgentName: name,
		Status:    c.Status,
		UID:       c.UID,
	}
	return t.append(m), m, true
}

// AppendUser appends a user query unconditionally.
func AppendUser(t Transcript, text string) (Transcript, Message) {
	m := Message{Kind: KindUser, Content: text, UID: uuid.NewString()}
	return t.append(m), m
}

// AppendError appends a failure entry. Error entries take no part in dedup.
func AppendError(t Transcript, text string) (Transcript, Message) {
	m := Message{Kind: KindError, Content: text, UID: uuid.NewString()}
	return t.append(m), m
}

// Normalize folds an answer for duplicate detection: NFC, trim, lower-case,
// collapse whitespace runs, strip trailing sentence punctuation.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), ".,!?")
}
