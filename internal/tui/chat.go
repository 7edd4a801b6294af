// ABOUTME: ChatModel renders the transcript in a scrolling viewport with a busy spinner
// ABOUTME: Agent messages go through glamour; user and error entries are plain styled text

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/seekdeck/internal/task"
	"github.com/mauromedda/seekdeck/internal/transcript"
)

// ChatModel shows the conversation.
type ChatModel struct {
	vp       viewport.Model
	spin     spinner.Model
	md       *MarkdownRenderer
	messages []transcript.Message
	inFlight bool
	task     task.Status
	width    int
	height   int
}

// NewChatModel creates an empty chat panel.
func NewChatModel() ChatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = Styles().Accent
	return ChatModel{
		vp:   viewport.New(0, 0),
		spin: sp,
		md:   NewMarkdownRenderer(),
	}
}

// SetSize sets the panel area. One row is reserved for the busy line.
func (m ChatModel) SetSize(w, h int) ChatModel {
	m.width, m.height = w, h
	m.vp.Width = w
	m.vp.Height = max(h-1, 1)
	m.refresh()
	return m
}

// SetMessages updates the transcript and busy state. Starting a task
// returns the spinner's first tick.
func (m ChatModel) SetMessages(msgs []transcript.Message, inFlight bool, st task.Status) (ChatModel, tea.Cmd) {
	var cmd tea.Cmd
	if inFlight && !m.inFlight {
		cmd = m.spin.Tick
	}
	grew := len(msgs) != len(m.messages)
	atBottom := m.vp.AtBottom()
	m.messages, m.inFlight, m.task = msgs, inFlight, st
	m.refresh()
	if grew && atBottom {
		m.vp.GotoBottom()
	}
	return m, cmd
}

// Update handles spinner ticks and scroll keys.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.inFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the viewport and the busy line.
func (m ChatModel) View() string {
	s := Styles()
	busy := ""
	if m.inFlight {
		text := m.task.Text
		if m.task.Thinking != "" {
			text = m.task.Thinking
		}
		if text == "" {
			text = "Thinking..."
		}
		busy = m.spin.View() + " " + s.Muted.Render(Truncate(text, max(m.width-3, 1)))
	}
	return m.vp.View() + "\n" + busy
}

func (m *ChatModel) refresh() {
	if m.width <= 0 {
		return
	}
	m.vp.SetContent(m.render())
}

func (m *ChatModel) render() string {
	s := Styles()
	if len(m.messages) == 0 {
		return s.Muted.Render("Ask the agent to build something. Enter sends, F1-F5 switch panels.")
	}
	w := max(m.width-2, 10)
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Kind {
		case transcript.KindUser:
			b.WriteString(s.UserLabel.Render("You"))
			b.WriteByte('\n')
			b.WriteString(s.UserBg.Render(msg.Content))
		case transcript.KindAgent:
			b.WriteString(s.AgentLabel.Render(msg.AgentName))
			if msg.Status != "" {
				b.WriteString(s.Muted.Render(" · " + msg.Status))
			}
			b.WriteByte('\n')
			if msg.Reasoning != "" {
				b.WriteString(s.Reasoning.Render(Truncate(firstLine(msg.Reasoning), w)))
				b.WriteByte('\n')
			}
			b.WriteString(m.md.Render(msg.Content, w))
		case transcript.KindError:
			b.WriteString(s.Error.Render("✗ " + msg.Content))
		}
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
