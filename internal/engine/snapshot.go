// ABOUTME: Immutable view of engine state handed to the UI after every transition
// ABOUTME: Slices are copied out so the UI can hold a Snapshot across later changes

package engine

import (
	"github.com/mauromedda/seekdeck/internal/editor"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/push"
	"github.com/mauromedda/seekdeck/internal/screenshot"
	"github.com/mauromedda/seekdeck/internal/task"
	"github.com/mauromedda/seekdeck/internal/transcript"
	"github.com/mauromedda/seekdeck/internal/view"
)

// NoticeLevel grades a notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a transient user-visible message.
type Notice struct {
	ID    int
	Level NoticeLevel
	Text  string
}

// Snapshot is everything the UI renders.
type Snapshot struct {
	Seq uint64

	Connection push.State
	Online     bool
	InFlight   bool
	Task       task.Status
	View       view.View

	Plan     task.Plan
	Activity []task.LogEntry

	Messages []transcript.Message

	Editor      editor.State
	EditorCaret int

	Screenshot screenshot.State

	PreviewFiles    []string
	PreviewMain     string
	SelectedPreview string
	PreviewBody     string
	PreviewType     string
	PreviewLoading  bool

	ProjectFiles []protocol.ProjectFile

	Models       protocol.ModelConfig
	ModelsLoaded bool

	Notice *Notice
	Closed bool
}

// ProjectFile looks up a project file record by name.
func (s Snapshot) ProjectFile(name string) (protocol.ProjectFile, bool) {
	for _, f := range s.ProjectFiles {
		if f.Name == name {
			return f, true
		}
	}
	return protocol.ProjectFile{}, false
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Seq:             e.seq,
		Connection:      e.connState,
		Online:          e.poller.Online(),
		InFlight:        e.inFlight,
		Task:            e.task,
		Plan:            e.plan,
		Activity:        e.activity,
		View:            e.view,
		Messages:        e.transcript.Messages(),
		Editor:          e.buffer.State(),
		EditorCaret:     e.caret,
		Screenshot:      e.shots.State(),
		PreviewFiles:    append([]string(nil), e.previewFiles...),
		PreviewMain:     e.previewMain,
		SelectedPreview: e.selectedPreview,
		PreviewBody:     e.previewBody,
		PreviewType:     e.previewType,
		PreviewLoading:  e.previewLoading,
		ProjectFiles:    append([]protocol.ProjectFile(nil), e.projectFiles...),
		Models:          e.models,
		ModelsLoaded:    e.modelsLoaded,
		Closed:          e.closed,
	}
	if e.notice != nil {
		n := *e.notice
		s.Notice = &n
	}
	return s
}
