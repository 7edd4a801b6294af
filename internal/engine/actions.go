// ABOUTME: User actions: submit, stop, view selection, project reset, files, preview, models, download
// ABOUTME: Each action posts to the loop; request failures become notices

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/seekdeck/internal/backend"
	"github.com/mauromedda/seekdeck/internal/config"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/task"
	"github.com/mauromedda/seekdeck/internal/transcript"
	"github.com/mauromedda/seekdeck/internal/view"
)

// goAct runs work off the loop. Its continuation is dropped once the engine
// is closed.
func (e *Engine) goAct(work func(ctx context.Context) func()) {
	e.sched.Go(func(ctx context.Context) func() {
		next := work(ctx)
		return func() {
			if e.closed || next == nil {
				return
			}
			next()
		}
	})
}

// act runs fn on the loop unless the engine is closed.
func (e *Engine) act(fn func()) {
	e.sched.Post(func() {
		if e.closed {
			return
		}
		fn()
	})
}

// Submit sends a query. The user message is appended immediately, even
// while another query runs; the backend answers that case with a 429.
func (e *Engine) Submit(text string) {
	e.act(func() { e.submit(text) })
}

func (e *Engine) submit(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	e.transcript, _ = transcript.AppendUser(e.transcript, text)
	if e.queries == 0 {
		e.plan = task.Plan{}
	}
	e.queries++
	e.setInFlight(true)

	api := e.api
	e.goAct(func(ctx context.Context) func() {
		a, err := api.Query(ctx, text)
		return func() {
			// The task stays in flight while an earlier query is still out.
			e.queries--
			if e.queries == 0 && e.inFlight {
				e.setInFlight(false)
			}
			if err != nil {
				msg := transcript.FailureNotice(err)
				e.transcript, _ = transcript.AppendError(e.transcript, msg)
				e.setNotice(NoticeError, msg)
				return
			}
			e.ingest(candidateFromAnswer(a))
		}
	})
	e.changed()
}

func (e *Engine) setInFlight(v bool) {
	e.inFlight = v
	e.poller.SetInFlight(v)
	e.changed()
}

// Stop cancels the running task. The push channel stays open.
func (e *Engine) Stop() {
	e.act(func() {
		e.setInFlight(false)
		api := e.api
		e.goAct(func(ctx context.Context) func() {
			err := api.Stop(ctx)
			return func() {
				if err != nil {
					e.setNotice(NoticeError, "Stop failed: "+err.Error())
					return
				}
				e.setNotice(NoticeInfo, "Task stopped")
			}
		})
	})
}

// SelectView switches panels. An explicit choice always wins.
func (e *Engine) SelectView(v view.View) {
	e.act(func() {
		e.view = view.Reduce(e.view, view.Select(v))
		e.syncScreenshots()
		e.changed()
	})
}

// NewProject discards the workspace and the conversation.
func (e *Engine) NewProject() {
	e.act(func() {
		api := e.api
		e.goAct(func(ctx context.Context) func() {
			err := api.NewProject(ctx)
			return func() {
				if err != nil {
					e.setNotice(NoticeError, "New project failed: "+err.Error())
					return
				}
				e.transcript = transcript.Transcript{}
				e.plan, e.activity = task.Plan{}, nil
				e.buffer.Reset()
				e.caret = 0
				e.previewFiles, e.projectFiles = nil, nil
				e.previewMain = ""
				e.clearPreview()
				e.refreshFiles()
				e.setNotice(NoticeInfo, "New project started")
			}
		})
	})
}

// ClearHistory clears the conversation.
func (e *Engine) ClearHistory() {
	e.act(func() {
		api := e.api
		e.goAct(func(ctx context.Context) func() {
			err := api.ClearHistory(ctx)
			return func() {
				if err != nil {
					e.setNotice(NoticeError, "Clear history failed: "+err.Error())
					return
				}
				e.transcript = transcript.Transcript{}
				e.changed()
			}
		})
	})
}

// OpenFile loads path into the editor and shows it.
func (e *Engine) OpenFile(path string) {
	e.act(func() {
		e.buffer.Load(path)
		e.caret = 0
		e.view = view.Reduce(e.view, view.Select(view.Editor))
		e.syncScreenshots()
		e.changed()
	})
}

// EditContent replaces the editor content with user input.
func (e *Engine) EditContent(content string) {
	e.act(func() { e.buffer.SetContent(content) })
}

// InsertTab inserts two spaces at byte offset at; the new caret is
// published as Snapshot.EditorCaret.
func (e *Engine) InsertTab(at int) {
	e.act(func() {
		e.caret = e.buffer.InsertTab(at)
		e.changed()
	})
}

// Save writes the editor content back.
func (e *Engine) Save() {
	e.act(e.buffer.Save)
}

// SelectPreview fetches a preview artifact.
func (e *Engine) SelectPreview(file string) {
	e.act(func() { e.selectPreview(file) })
}

func (e *Engine) selectPreview(file string) {
	e.selectedPreview = file
	e.previewLoading = true
	e.previewSeq++
	seq := e.previewSeq

	api := e.api
	e.goAct(func(ctx context.Context) func() {
		body, ctype, err := api.Preview(ctx, file)
		return func() {
			if seq != e.previewSeq {
				return
			}
			e.previewLoading = false
			if err != nil {
				e.previewBody, e.previewType = "", ""
				e.setNotice(NoticeError, fmt.Sprintf("Preview %s failed: %v", file, err))
				return
			}
			e.previewBody, e.previewType = string(body), ctype
			e.changed()
		}
	})
	e.changed()
}

func (e *Engine) clearPreview() {
	e.previewSeq++
	e.selectedPreview, e.previewBody, e.previewType = "", "", ""
	e.previewLoading = false
}

// RefreshFiles reloads both file lists.
func (e *Engine) RefreshFiles() {
	e.act(e.refreshFiles)
}

// refreshFiles fetches both lists concurrently. Each list is replaced only
// by its own successful response. Requests made while one is running are
// folded into a single follow-up.
func (e *Engine) refreshFiles() {
	if e.filesBusy {
		e.filesAgain = true
		return
	}
	e.filesBusy = true
	api := e.api
	e.goAct(func(ctx context.Context) func() {
		var (
			g        errgroup.Group
			previews protocol.PreviewFiles
			project  protocol.ProjectFiles
			prevErr  error
			projErr  error
		)
		g.Go(func() error {
			previews, prevErr = api.PreviewFiles(ctx)
			return nil
		})
		g.Go(func() error {
			project, projErr = api.ProjectFiles(ctx)
			return nil
		})
		_ = g.Wait()

		return func() {
			e.filesBusy = false
			if prevErr == nil {
				e.previewFiles = previews.Files
				e.previewMain = previews.MainFile
			}
			if projErr == nil {
				e.projectFiles = project.Files
			}
			if prevErr != nil || projErr != nil {
				e.setNotice(NoticeError, "Refreshing files failed: "+firstErr(prevErr, projErr).Error())
			}
			if e.filesAgain && !e.closed {
				e.filesAgain = false
				e.refreshFiles()
			}
			e.changed()
		}
	})
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadModels fetches the model configuration.
func (e *Engine) LoadModels() {
	e.act(e.loadModels)
}

func (e *Engine) loadModels() {
	api := e.api
	e.goAct(func(ctx context.Context) func() {
		mc, err := api.Models(ctx)
		return func() {
			if err != nil {
				e.setNotice(NoticeError, "Loading models failed: "+err.Error())
				return
			}
			e.models = mc
			e.modelsLoaded = true
			e.changed()
		}
	})
}

// ChangeModel switches the backend model.
func (e *Engine) ChangeModel(provider, model string) {
	e.act(func() {
		api := e.api
		e.goAct(func(ctx context.Context) func() {
			err := api.ChangeModel(ctx, provider, model)
			return func() {
				if err != nil {
					e.setNotice(NoticeError, "Changing model failed: "+err.Error())
					return
				}
				e.models.CurrentProvider = provider
				e.models.CurrentModel = model
				e.setNotice(NoticeInfo, "Model changed to "+model)
			}
		})
	})
}

// Download saves the project archive into the download directory.
func (e *Engine) Download() {
	e.act(func() {
		api, dir := e.api, e.dlDir
		e.goAct(func(ctx context.Context) func() {
			path, err := DownloadTo(ctx, api, dir)
			return func() {
				if err != nil {
					e.setNotice(NoticeError, "Download failed: "+err.Error())
					return
				}
				e.setNotice(NoticeInfo, "Saved "+path)
			}
		})
	})
}

// Archiver fetches project archives.
type Archiver interface {
	DownloadZip(ctx context.Context) (*backend.Archive, error)
}

// DownloadTo streams the project archive into dir and returns the file path.
func DownloadTo(ctx context.Context, api Archiver, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	dir = config.ExpandHome(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	arc, err := api.DownloadZip(ctx)
	if err != nil {
		return "", err
	}
	defer arc.Body.Close()

	path := filepath.Join(dir, filepath.Base(arc.Name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, arc.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// DismissNotice clears the current notice.
func (e *Engine) DismissNotice() {
	e.act(func() {
		if e.notice == nil {
			return
		}
		e.notice = nil
		e.changed()
	})
}
