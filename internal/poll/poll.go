// ABOUTME: REST polling fallback: latest answer while a task is in flight, plus a liveness probe
// ABOUTME: A tick is skipped while the previous request of the same kind is still outstanding

package poll

import (
	"context"
	"time"

	"github.com/mauromedda/seekdeck/internal/log"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/sched"
)

// Default periods.
const (
	DefaultInterval = 5 * time.Second
	DefaultLiveness = 10 * time.Second
)

// Source is the subset of the backend the fallback polls.
type Source interface {
	LatestAnswer(ctx context.Context) (protocol.Answer, error)
	Health(ctx context.Context) (protocol.Health, error)
}

// Fallback polls on the scheduler loop.
type Fallback struct {
	sched    sched.Scheduler
	src      Source
	interval time.Duration
	liveness time.Duration

	answerTimer sched.Timer
	healthTimer sched.Timer
	answerBusy  bool
	healthBusy  bool
	online      bool
	probed      bool

	// OnAnswer receives each successful /latest_answer result.
	OnAnswer func(protocol.Answer)
	// OnOnline runs when the liveness result changes.
	OnOnline func(online bool)
}

// New creates a stopped fallback.
func New(s sched.Scheduler, src Source, interval, liveness time.Duration) *Fallback {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if liveness <= 0 {
		liveness = DefaultLiveness
	}
	return &Fallback{sched: s, src: src, interval: interval, liveness: liveness}
}

// Online returns the last liveness result.
func (f *Fallback) Online() bool { return f.online }

// Polling reports whether answer polling is armed.
func (f *Fallback) Polling() bool { return f.answerTimer != nil }

// StartLiveness probes once now and then periodically.
func (f *Fallback) StartLiveness() {
	if f.healthTimer != nil {
		return
	}
	f.healthTimer = f.sched.Every(f.liveness, f.probe)
	f.probe()
}

// SetInFlight arms or disarms answer polling.
func (f *Fallback) SetInFlight(inFlight bool) {
	switch {
	case inFlight && f.answerTimer == nil:
		f.answerTimer = f.sched.Every(f.interval, f.pollAnswer)
	case !inFlight && f.answerTimer != nil:
		f.answerTimer = sched.Stop(f.answerTimer)
	}
}

// Stop cancels both timers.
func (f *Fallback) Stop() {
	f.answerTimer = sched.Stop(f.answerTimer)
	f.healthTimer = sched.Stop(f.healthTimer)
}

func (f *Fallback) pollAnswer() {
	if f.answerBusy {
		return
	}
	f.answerBusy = true
	src := f.src
	f.sched.Go(func(ctx context.Context) func() {
		a, err := src.LatestAnswer(ctx)
		return func() {
			f.answerBusy = false
			if err != nil {
				log.Debug("poll: latest answer: %v", err)
				return
			}
			// Polling was cancelled while the request was out.
			if f.answerTimer == nil {
				return
			}
			if f.OnAnswer != nil {
				f.OnAnswer(a)
			}
		}
	})
}

func (f *Fallback) probe() {
	if f.healthBusy {
		return
	}
	f.healthBusy = true
	src := f.src
	f.sched.Go(func(ctx context.Context) func() {
		h, err := src.Health(ctx)
		return func() {
			f.healthBusy = false
			online := err == nil
			if err != nil {
				log.Debug("poll: health: %v", err)
			} else if !h.Healthy() {
				log.Debug("poll: backend %s", h.Status)
			}
			if f.probed && online == f.online {
				return
			}
			f.probed = true
			f.online = online
			if f.OnOnline != nil {
				f.OnOnline(online)
			}
		}
	})
}
