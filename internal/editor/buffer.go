// ABOUTME: Editable file buffer with dirty tracking and a save round trip
// ABOUTME: Runs on the scheduler loop; network calls go off-loop and report back

package editor

import (
	"context"
	"errors"
	"time"

	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/sched"
)

// TabText is what the Tab key inserts.
const TabText = "  "

// DefaultStatusTTL is how long a save indicator stays visible.
const DefaultStatusTTL = 3 * time.Second

// SaveStatus is the result indicator of the last save.
type SaveStatus int

const (
	SaveNone SaveStatus = iota
	SaveOK
	SaveError
)

func (s SaveStatus) String() string {
	switch s {
	case SaveOK:
		return "saved"
	case SaveError:
		return "error"
	default:
		return ""
	}
}

// ErrTruncated is reported when saving a file the backend served cut short.
// Writing it back would drop everything past the cut.
var ErrTruncated = errors.New("file is too large and was truncated; it is read-only")

// Store is the file backend the buffer reads from and writes to.
type Store interface {
	FileContent(ctx context.Context, path string) (protocol.FileContent, error)
	SaveFile(ctx context.Context, path, content string) (protocol.SaveResult, error)
}

// State is a copy of the buffer's visible state.
type State struct {
	Path       string
	Content    string
	Size       int64
	Truncated  bool
	Dirty      bool
	Loading    bool
	Saving     bool
	SaveStatus SaveStatus
	LoadErr    string
}

// Buffer holds at most one open file.
type Buffer struct {
	sched     sched.Scheduler
	store     Store
	statusTTL time.Duration

	path      string
	content   string
	baseline  string
	size      int64
	truncated bool
	status    SaveStatus
	loadErr   string

	loadSeq     int
	loading     bool
	saving      bool
	statusTimer sched.Timer

	// OnChange runs after every state change.
	OnChange func()
	// OnSaved runs after a successful save.
	OnSaved func(path string)
	// OnError runs when a load or save fails.
	OnError func(op string, err error)
}

// New creates an empty buffer.
func New(s sched.Scheduler, store Store, statusTTL time.Duration) *Buffer {
	if statusTTL <= 0 {
		statusTTL = DefaultStatusTTL
	}
	return &Buffer{sched: s, store: store, statusTTL: statusTTL}
}

// State returns a copy of the current state.
func (b *Buffer) State() State {
	return State{
		Path:       b.path,
		Content:    b.content,
		Size:       b.size,
		Truncated:  b.truncated,
		Dirty:      b.Dirty(),
		Loading:    b.loading,
		Saving:     b.saving,
		SaveStatus: b.status,
		LoadErr:    b.loadErr,
	}
}

// Dirty reports whether the content differs from the last fetched or saved text.
func (b *Buffer) Dirty() bool {
	return b.path != "" && b.content != b.baseline
}

// Load fetches path and replaces the buffer. A later Load supersedes one
// still in flight.
func (b *Buffer) Load(path string) {
	b.loadSeq++
	seq := b.loadSeq
	b.loading = true
	b.loadErr = ""
	b.changed()

	store := b.store
	b.sched.Go(func(ctx context.Context) func() {
		fc, err := store.FileContent(ctx, path)
		return func() {
			if seq != b.loadSeq {
				return
			}
			b.loading = false
			if err != nil {
				b.loadErr = err.Error()
				b.notifyError("load", err)
				b.changed()
				return
			}
			b.path = path
			b.content = fc.Content
			b.baseline = fc.Content
			b.size = fc.Size
			b.truncated = fc.Truncated
			b.statusTimer = sched.Stop(b.statusTimer)
			b.status = SaveNone
			b.changed()
		}
	})
}

// ReadOnly reports whether edits are refused for the open file.
func (b *Buffer) ReadOnly() bool { return b.truncated }

// SetContent replaces the content with user input. Truncated files ignore it.
func (b *Buffer) SetContent(content string) {
	if b.path == "" || b.truncated || content == b.content {
		return
	}
	b.content = content
	b.changed()
}

// Insert inserts text at byte offset at and returns the caret offset after
// the inserted text.
func (b *Buffer) Insert(at int, text string) int {
	if b.path == "" || b.truncated {
		return at
	}
	at = max(0, min(at, len(b.content)))
	b.SetContent(b.content[:at] + text + b.content[at:])
	return at + len(text)
}

// InsertTab inserts two spaces at offset at.
func (b *Buffer) InsertTab(at int) int {
	return b.Insert(at, TabText)
}

// Save writes the content back. It is a no-op unless the buffer is dirty and
// no save is already running. Truncated files are never written.
func (b *Buffer) Save() {
	if b.path != "" && b.truncated {
		b.setStatus(SaveError)
		b.notifyError("save", ErrTruncated)
		return
	}
	if !b.Dirty() || b.saving {
		return
	}
	b.saving = true
	b.changed()

	path, snapshot := b.path, b.content
	store := b.store
	b.sched.Go(func(ctx context.Context) func() {
		res, err := store.SaveFile(ctx, path, snapshot)
		return func() {
			b.saving = false
			if path != b.path {
				// A different file was opened while saving.
				b.changed()
				return
			}
			if err != nil {
				b.setStatus(SaveError)
				b.notifyError("save", err)
				return
			}
			b.baseline = snapshot
			if res.Size > 0 {
				b.size = res.Size
			} else {
				b.size = int64(len(snapshot))
			}
			b.setStatus(SaveOK)
			if b.OnSaved != nil {
				b.OnSaved(path)
			}
		}
	})
}

// Reset empties the buffer, as on a new project.
func (b *Buffer) Reset() {
	b.loadSeq++
	b.statusTimer = sched.Stop(b.statusTimer)
	b.path, b.content, b.baseline = "", "", ""
	b.size, b.truncated = 0, false
	b.status, b.loadErr = SaveNone, ""
	b.loading, b.saving = false, false
	b.changed()
}

// Close cancels the status timer.
func (b *Buffer) Close() {
	b.statusTimer = sched.Stop(b.statusTimer)
}

func (b *Buffer) setStatus(s SaveStatus) {
	b.status = s
	b.statusTimer = sched.Stop(b.statusTimer)
	b.statusTimer = b.sched.AfterFunc(b.statusTTL, func() {
		b.statusTimer = nil
		b.status = SaveNone
		b.changed()
	})
	b.changed()
}

func (b *Buffer) changed() {
	if b.OnChange != nil {
		b.OnChange()
	}
}

func (b *Buffer) notifyError(op string, err error) {
	if b.OnError != nil {
		b.OnError(op, err)
	}
}
