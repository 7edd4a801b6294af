// ABOUTME: In-memory backend and helpers shared by engine tests
// ABOUTME: Queries can be held open so tests control when the response lands

package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mauromedda/seekdeck/internal/backend"
	"github.com/mauromedda/seekdeck/internal/config"
	"github.com/mauromedda/seekdeck/internal/eventbus"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/push"
	"github.com/mauromedda/seekdeck/internal/sched"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu sync.Mutex

	queryAnswer protocol.Answer
	queryErr    error
	queries     []string

	latest      protocol.Answer
	latestCalls int
	healthErr   error

	files       map[string]string
	truncateAt  int
	saveErr     error
	saves       int
	previews    protocol.PreviewFiles
	project     protocol.ProjectFiles
	listErr     error
	listCalls   int
	previewBody map[string]string

	models  protocol.ModelConfig
	changed []string
	stops   int
	newProj int
	cleared int
	zip     []byte

	shotCalls []time.Time
	shot      []byte
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return &fakeBackend{
		files:       map[string]string{},
		previewBody: map[string]string{},
		shot:        buf.Bytes(),
		models: protocol.ModelConfig{
			CurrentProvider: "groq",
			CurrentModel:    "llama-3.3-70b-versatile",
			Providers: map[string]protocol.Provider{
				"groq": {Name: "Groq", Models: []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"}},
			},
		},
	}
}

func (f *fakeBackend) Health(context.Context) (protocol.Health, error) {
	if f.healthErr != nil {
		return protocol.Health{}, f.healthErr
	}
	return protocol.Health{Status: "healthy"}, nil
}

func (f *fakeBackend) LatestAnswer(context.Context) (protocol.Answer, error) {
	f.latestCalls++
	return f.latest, nil
}

func (f *fakeBackend) Query(_ context.Context, text string) (protocol.Answer, error) {
	f.queries = append(f.queries, text)
	return f.queryAnswer, f.queryErr
}

func (f *fakeBackend) Stop(context.Context) error         { f.stops++; return nil }
func (f *fakeBackend) NewProject(context.Context) error   { f.newProj++; return nil }
func (f *fakeBackend) ClearHistory(context.Context) error { f.cleared++; return nil }

func (f *fakeBackend) FileContent(_ context.Context, path string) (protocol.FileContent, error) {
	c, ok := f.files[path]
	if !ok {
		return protocol.FileContent{}, &backend.APIError{Status: 404, Message: "File not found"}
	}
	fc := protocol.FileContent{File: path, Content: c, Size: int64(len(c))}
	if f.truncateAt > 0 && len(c) > f.truncateAt {
		fc.Content, fc.Truncated = c[:f.truncateAt], true
	}
	return fc, nil
}

func (f *fakeBackend) SaveFile(_ context.Context, path, content string) (protocol.SaveResult, error) {
	f.saves++
	if f.saveErr != nil {
		return protocol.SaveResult{}, f.saveErr
	}
	f.files[path] = content
	return protocol.SaveResult{Status: "saved", File: path, Size: int64(len(content))}, nil
}

func (f *fakeBackend) PreviewFiles(context.Context) (protocol.PreviewFiles, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.previews, f.listErr
}

func (f *fakeBackend) ProjectFiles(context.Context) (protocol.ProjectFiles, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project, nil
}

func (f *fakeBackend) Preview(_ context.Context, file string) ([]byte, string, error) {
	body, ok := f.previewBody[file]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return []byte(body), "text/html", nil
}

func (f *fakeBackend) Models(context.Context) (protocol.ModelConfig, error) { return f.models, nil }

func (f *fakeBackend) ChangeModel(_ context.Context, provider, model string) error {
	f.changed = append(f.changed, provider+"/"+model)
	return nil
}

func (f *fakeBackend) DownloadZip(context.Context) (*backend.Archive, error) {
	return &backend.Archive{Name: "project.zip", Body: io.NopCloser(bytes.NewReader(f.zip))}, nil
}

func (f *fakeBackend) Screenshot(_ context.Context, at time.Time) ([]byte, error) {
	f.shotCalls = append(f.shotCalls, at)
	return f.shot, nil
}

// refusingDialer never connects.
type refusingDialer struct{}

func (refusingDialer) Dial(context.Context, string) (push.Conn, error) {
	return nil, errors.New("connection refused")
}

type harness struct {
	t   *testing.T
	m   *sched.Manual
	be  *fakeBackend
	e   *Engine
	bus *eventbus.Bus[Snapshot]
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	m := sched.NewManual(epoch)
	be := newFakeBackend(t)
	bus := eventbus.New[Snapshot]()
	e := New(Options{
		Sched:       m,
		Backend:     be,
		Dialer:      refusingDialer{},
		Endpoint:    func() (string, error) { return "ws://agent.test/ws", nil },
		Timing:      config.DefaultTiming(),
		DownloadDir: t.TempDir(),
		Bus:         bus,
	})
	return &harness{t: t, m: m, be: be, e: e, bus: bus}
}

// snap flushes the loop and returns the latest snapshot.
func (h *harness) snap() Snapshot {
	h.t.Helper()
	h.m.Flush()
	s, ok := h.bus.Latest()
	if !ok {
		h.t.Fatal("no snapshot published")
	}
	return s
}

func (h *harness) push(ev protocol.Event) {
	h.e.Dispatch(ev)
	h.m.Flush()
}
