// ABOUTME: Deterministic Scheduler for tests with a manual clock
// ABOUTME: Work runs inline, continuations queue until Flush; Advance fires due timers in order

package sched

import (
	"context"
	"sort"
	"sync"
	"time"
)

// maxFlushSteps guards Flush against callbacks that re-post forever.
const maxFlushSteps = 100_000

// Manual is a Scheduler driven explicitly by the caller. Nothing happens
// until Flush or Advance is called, which makes interleavings reproducible.
//
// Post may be called from any goroutine; everything else runs on the
// goroutine calling Flush/Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManual creates a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manual{now: start, ctx: ctx, cancel: cancel}
}

// Post queues fn until the next Flush.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// AfterFunc schedules fn at Now()+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

// Every schedules fn at Now()+d and every d thereafter.
func (m *Manual) Every(d time.Duration, fn func()) Timer {
	return m.add(d, d, fn)
}

// Go runs work inline and queues its continuation.
func (m *Manual) Go(work func(ctx context.Context) func()) {
	if cont := work(m.ctx); cont != nil {
		m.Post(cont)
	}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Flush runs queued callbacks, including ones they post, until the queue
// is empty.
func (m *Manual) Flush() {
	for range maxFlushSteps {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
	}
	panic("sched: Flush did not converge")
}

// Advance moves the clock forward by d, firing every timer that falls due
// in chronological order and flushing after each one.
func (m *Manual) Advance(d time.Duration) {
	m.Flush()
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			break
		}
		m.now = t.due
		if t.period > 0 {
			t.due = t.due.Add(t.period)
		} else {
			t.stopped = true
			m.removeLocked(t)
		}
		m.mu.Unlock()

		m.Post(func() {
			m.mu.Lock()
			stopped := t.stopped && t.period > 0
			m.mu.Unlock()
			if stopped {
				return
			}
			t.fn()
		})
		m.Flush()
	}
	m.Flush()
}

// Pending reports how many timers are armed.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Close cancels the context handed to work functions.
func (m *Manual) Close() {
	m.cancel()
}

func (m *Manual) add(d, period time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), period: period, fn: fn, seq: m.seq}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.due.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}

func (m *Manual) removeLocked(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

type manualTimer struct {
	m       *Manual
	due     time.Time
	period  time.Duration
	fn      func()
	seq     int
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	t.m.removeLocked(t)
	return true
}
