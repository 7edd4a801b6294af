// ABOUTME: Cooperative scheduler contract: one loop runs every state transition
// ABOUTME: Timers return cancel handles; blocking work runs off-loop and reports back via continuations

package sched

import (
	"context"
	"time"
)

// Timer is a cancellable handle for a scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the timer was still live.
	// A stopped timer never runs its callback, even if the callback was
	// already queued on the loop.
	Stop() bool
}

// Scheduler serialises callbacks onto a single loop.
//
// Components never touch their state from any other goroutine: timers,
// network completions and user actions all arrive through the loop.
type Scheduler interface {
	// Post queues fn to run on the loop.
	Post(fn func())
	// AfterFunc runs fn on the loop once after d.
	AfterFunc(d time.Duration, fn func()) Timer
	// Every runs fn on the loop each d until stopped.
	Every(d time.Duration, fn func()) Timer
	// Go runs work off the loop. A non-nil continuation returned by work
	// is posted back to the loop.
	Go(work func(ctx context.Context) func())
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}

// Stop stops t if it is non-nil and returns nil, so callers can write
// `x.timer = sched.Stop(x.timer)`.
func Stop(t Timer) Timer {
	if t != nil {
		t.Stop()
	}
	return nil
}
