// ABOUTME: Engine owns every component on the scheduler loop and applies push events
// ABOUTME: Public methods post to the loop; a Snapshot is published after each change

package engine

import (
	"context"
	"time"

	"github.com/mauromedda/seekdeck/internal/backend"
	"github.com/mauromedda/seekdeck/internal/config"
	"github.com/mauromedda/seekdeck/internal/editor"
	"github.com/mauromedda/seekdeck/internal/eventbus"
	"github.com/mauromedda/seekdeck/internal/log"
	"github.com/mauromedda/seekdeck/internal/poll"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/push"
	"github.com/mauromedda/seekdeck/internal/sched"
	"github.com/mauromedda/seekdeck/internal/screenshot"
	"github.com/mauromedda/seekdeck/internal/task"
	"github.com/mauromedda/seekdeck/internal/transcript"
	"github.com/mauromedda/seekdeck/internal/view"
)

// Backend is the REST surface the engine drives.
type Backend interface {
	poll.Source
	editor.Store
	screenshot.Fetcher

	Query(ctx context.Context, text string) (protocol.Answer, error)
	Stop(ctx context.Context) error
	NewProject(ctx context.Context) error
	ClearHistory(ctx context.Context) error
	PreviewFiles(ctx context.Context) (protocol.PreviewFiles, error)
	ProjectFiles(ctx context.Context) (protocol.ProjectFiles, error)
	Preview(ctx context.Context, file string) ([]byte, string, error)
	Models(ctx context.Context) (protocol.ModelConfig, error)
	ChangeModel(ctx context.Context, provider, model string) error
	DownloadZip(ctx context.Context) (*backend.Archive, error)
}

var _ Backend = (*backend.Client)(nil)

// Options configures an Engine.
type Options struct {
	Sched    sched.Scheduler
	Backend  Backend
	Dialer   push.Dialer
	Endpoint func() (string, error)
	Timing   config.Timing
	// DownloadDir receives project archives.
	DownloadDir string
	Bus         *eventbus.Bus[Snapshot]
}

// Engine is the single owner of client state.
type Engine struct {
	sched   sched.Scheduler
	api     Backend
	timing  config.Timing
	bus     *eventbus.Bus[Snapshot]
	dlDir   string
	started bool
	closed  bool
	done    chan struct{}

	conn      *push.Manager
	poller    *poll.Fallback
	shots     *screenshot.Manager
	buffer    *editor.Buffer
	connState push.State

	transcript transcript.Transcript
	task       task.Status
	view       view.View
	inFlight   bool
	queries    int
	caret      int
	plan       task.Plan
	activity   []task.LogEntry
	agentClear sched.Timer

	previewFiles    []string
	previewMain     string
	selectedPreview string
	previewBody     string
	previewType     string
	previewLoading  bool
	previewSeq      int
	projectFiles    []protocol.ProjectFile
	filesBusy       bool
	filesAgain      bool

	models       protocol.ModelConfig
	modelsLoaded bool

	notice      *Notice
	noticeSeq   int
	noticeTimer sched.Timer

	seq           uint64
	publishQueued bool
}

// New wires the components. Nothing runs until Start.
func New(o Options) *Engine {
	t := mergeTiming(o.Timing)
	bus := o.Bus
	if bus == nil {
		bus = eventbus.New[Snapshot]()
	}
	e := &Engine{
		sched:  o.Sched,
		api:    o.Backend,
		timing: t,
		bus:    bus,
		dlDir:  o.DownloadDir,
		done:   make(chan struct{}),
		view:   view.Chat,
	}

	e.conn = push.NewManager(o.Sched, o.Dialer, o.Endpoint, push.Timing{
		Heartbeat:  t.Heartbeat,
		Reconnect:  t.Reconnect,
		RetryDelay: t.ConnectRetry,
	})
	e.conn.OnEvent = e.handleEvent
	e.conn.OnState = func(s push.State) {
		e.connState = s
		e.changed()
	}

	e.poller = poll.New(o.Sched, o.Backend, t.Poll, t.Liveness)
	e.poller.OnAnswer = func(a protocol.Answer) {
		e.ingest(candidateFromAnswer(a))
	}
	e.poller.OnOnline = func(bool) { e.changed() }

	e.shots = screenshot.NewManager(o.Sched, o.Backend, t.Screenshot)
	e.shots.OnChange = e.changed

	e.buffer = editor.New(o.Sched, o.Backend, t.SaveStatus)
	e.buffer.OnChange = e.changed
	e.buffer.OnSaved = func(string) { e.refreshFiles() }
	e.buffer.OnError = func(op string, err error) {
		e.setNotice(NoticeError, "Could not "+op+" file: "+err.Error())
	}
	return e
}

func mergeTiming(t config.Timing) config.Timing {
	d := config.DefaultTiming()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&d.Heartbeat, t.Heartbeat)
	set(&d.Reconnect, t.Reconnect)
	set(&d.ConnectRetry, t.ConnectRetry)
	set(&d.Poll, t.Poll)
	set(&d.Liveness, t.Liveness)
	set(&d.Screenshot, t.Screenshot)
	set(&d.SaveStatus, t.SaveStatus)
	set(&d.AgentClear, t.AgentClear)
	set(&d.Notice, t.Notice)
	return d
}

// Bus returns the snapshot bus.
func (e *Engine) Bus() *eventbus.Bus[Snapshot] { return e.bus }

// Done is closed once Close has torn everything down.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Start opens the push channel, starts the liveness probe and loads the
// file lists and model configuration.
func (e *Engine) Start() {
	e.sched.Post(func() {
		if e.started || e.closed {
			return
		}
		e.started = true
		e.conn.Open()
		e.poller.StartLiveness()
		e.refreshFiles()
		e.loadModels()
		e.changed()
	})
}

// Close cancels every timer, closes the push channel and releases the
// current screenshot. The scheduler itself is left to the caller.
func (e *Engine) Close() {
	e.sched.Post(e.teardown)
}

func (e *Engine) teardown() {
	if e.closed {
		return
	}
	e.closed = true
	e.conn.Close()
	e.poller.Stop()
	e.shots.Close()
	e.buffer.Close()
	e.agentClear = sched.Stop(e.agentClear)
	e.noticeTimer = sched.Stop(e.noticeTimer)
	e.publish()
	close(e.done)
}

// Dispatch feeds a push event through the engine, as if it had arrived on
// the push channel.
func (e *Engine) Dispatch(ev protocol.Event) {
	e.sched.Post(func() { e.handleEvent(ev) })
}

func (e *Engine) handleEvent(ev protocol.Event) {
	if e.closed {
		return
	}
	switch ev.Type {
	case protocol.EventStatus:
		e.task = task.ApplyStatus(e.task, ev)
		if ev.HasAnswer() {
			e.ingest(transcript.Candidate{
				Answer:    ev.Answer,
				Reasoning: ev.Reasoning,
				AgentName: ev.AgentName,
				Status:    ev.Status,
				UID:       ev.UID,
			})
		}
		if e.task.Complete() && e.task.Agent != protocol.AgentNone {
			e.scheduleAgentClear()
		}

	case protocol.EventAgentSwitch:
		e.agentClear = sched.Stop(e.agentClear)
		wasActive := e.shots.Active()
		e.task = task.ApplyAgentSwitch(e.task, ev)
		e.view = view.Reduce(e.view, view.AgentSwitch(ev.AgentType))
		e.syncScreenshots()
		if ev.AgentType == protocol.AgentBrowser && wasActive {
			e.shots.Refresh()
		}

	case protocol.EventFileUpdate:
		e.refreshFiles()

	case protocol.EventPreviewReady:
		e.refreshFiles()
		if file := protocol.PreviewFileFromURL(ev.PreviewURL); file != "" {
			e.selectPreview(file)
		}
		e.view = view.Reduce(e.view, view.PreviewReady())
		e.syncScreenshots()

	case protocol.EventPlan:
		e.plan = task.ApplyPlan(e.plan, ev)

	case protocol.EventPlanProgress:
		e.plan = task.ApplyPlanProgress(e.plan, ev)

	case protocol.EventPhase:
		e.plan = task.ApplyPhase(e.plan, ev)

	case protocol.EventAgentThinking:
		e.task = task.ApplyThinking(e.task, ev)
		e.activity = task.AppendLog(e.activity, task.LogFromEvent(ev, e.sched.Now()))

	case protocol.EventExecutionLog:
		e.activity = task.AppendLog(e.activity, task.LogFromEvent(ev, e.sched.Now()))

	default:
		// pong, execution and unknown kinds carry nothing the client shows.
		return
	}
	e.changed()
}

func (e *Engine) scheduleAgentClear() {
	e.agentClear = sched.Stop(e.agentClear)
	e.agentClear = e.sched.AfterFunc(e.timing.AgentClear, func() {
		e.agentClear = nil
		e.task = task.ClearAgent(e.task)
		e.syncScreenshots()
		e.changed()
	})
}

func (e *Engine) syncScreenshots() {
	e.shots.SetWanted(view.ScreenshotWanted(e.view, e.task.Agent))
}

// ingest is the single path by which answers from push, polling and query
// responses reach the transcript.
func (e *Engine) ingest(c transcript.Candidate) {
	tr, msg, ok := transcript.Ingest(e.transcript, c)
	if !ok {
		return
	}
	e.transcript = tr
	e.task = task.WithText(e.task, c.Status)
	log.Debug("engine: appended answer from %s (%d chars)", msg.AgentName, len(msg.Content))
	e.refreshFiles()
	e.changed()
}

func candidateFromAnswer(a protocol.Answer) transcript.Candidate {
	return transcript.Candidate{
		Answer:    a.Answer,
		Reasoning: a.Reasoning,
		AgentName: a.AgentName,
		Status:    a.Status,
		UID:       a.UID,
	}
}

func (e *Engine) setNotice(level NoticeLevel, text string) {
	if e.closed {
		return
	}
	e.noticeSeq++
	id := e.noticeSeq
	e.notice = &Notice{ID: id, Level: level, Text: text}
	e.noticeTimer = sched.Stop(e.noticeTimer)
	e.noticeTimer = e.sched.AfterFunc(e.timing.Notice, func() {
		e.noticeTimer = nil
		if e.notice != nil && e.notice.ID == id {
			e.notice = nil
			e.changed()
		}
	})
	if level == NoticeError {
		log.Warn("notice: %s", text)
	}
	e.changed()
}

// changed queues one publish for the current burst of transitions. After
// teardown the final snapshot has been published and nothing follows it.
func (e *Engine) changed() {
	if e.publishQueued || e.closed {
		return
	}
	e.publishQueued = true
	e.sched.Post(func() {
		e.publishQueued = false
		if e.closed {
			return
		}
		e.publish()
	})
}

func (e *Engine) publish() {
	e.seq++
	e.bus.Publish(e.snapshot())
}
