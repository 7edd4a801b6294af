// ABOUTME: Production Scheduler backed by one goroutine draining an unbounded queue
// ABOUTME: Close cancels every live timer and the shared context, then waits for workers

package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is the production Scheduler. Callbacks run one at a time on the
// goroutine that calls Run.
type Loop struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
	timers map[*loopTimer]struct{}

	workers sync.WaitGroup
	done    chan struct{}
}

// NewLoop creates a Loop. Call Start (or Run) to begin processing.
func NewLoop() *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		timers: make(map[*loopTimer]struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start() {
	go l.Run()
}

// Run processes callbacks until Close. Blocks.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		if closed {
			return
		}
		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-l.wake:
		case <-l.ctx.Done():
		}
	}
}

// Post queues fn. Posts after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc runs fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{loop: l}
	if !l.track(t) {
		t.stopped.Store(true)
		return t
	}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Swap(true) {
				return
			}
			l.untrack(t)
			fn()
		})
	})
	return t
}

// Every runs fn on the loop each d until the returned Timer is stopped.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &loopTimer{loop: l, stopCh: make(chan struct{})}
	if !l.track(t) {
		t.stopped.Store(true)
		return t
	}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stopCh:
				return
			case <-l.ctx.Done():
				return
			case <-ticker.C:
				l.Post(func() {
					if t.stopped.Load() {
						return
					}
					fn()
				})
			}
		}
	}()
	return t
}

// Go runs work on a new goroutine with the loop's context.
func (l *Loop) Go(work func(ctx context.Context) func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.workers.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.workers.Done()
		if cont := work(l.ctx); cont != nil {
			l.Post(cont)
		}
	}()
}

// Now returns wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Close stops every live timer, cancels in-flight work and stops the loop.
// Safe to call more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	live := make([]*loopTimer, 0, len(l.timers))
	for t := range l.timers {
		live = append(live, t)
	}
	l.timers = nil
	l.queue = nil
	l.mu.Unlock()

	for _, t := range live {
		t.Stop()
	}
	l.cancel()
	l.workers.Wait()
	<-l.done
}

// LiveTimers reports how many timers are armed.
func (l *Loop) LiveTimers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

func (l *Loop) track(t *loopTimer) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.timers[t] = struct{}{}
	return true
}

func (l *Loop) untrack(t *loopTimer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timers != nil {
		delete(l.timers, t)
	}
}

type loopTimer struct {
	loop     *Loop
	timer    *time.Timer
	stopCh   chan struct{}
	stopped  atomic.Bool
	stopOnce sync.Once
}

func (t *loopTimer) Stop() bool {
	wasLive := !t.stopped.Swap(true)
	t.stopOnce.Do(func() {
		if t.timer != nil {
			t.timer.Stop()
		}
		if t.stopCh != nil {
			close(t.stopCh)
		}
		t.loop.untrack(t)
	})
	return wasLive
}
