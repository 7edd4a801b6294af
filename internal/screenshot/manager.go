// ABOUTME: Owns the current screenshot handle and the repeating refresh loop
// ABOUTME: Each superseded handle is released exactly once; failures fall back to NoImage

package screenshot

import (
	"context"
	"time"

	"github.com/mauromedda/seekdeck/internal/log"
	"github.com/mauromedda/seekdeck/internal/sched"
)

// DefaultInterval is the refresh period while screenshots are wanted.
const DefaultInterval = 3 * time.Second

// Fetcher retrieves the latest screenshot bytes.
type Fetcher interface {
	Screenshot(ctx context.Context, at time.Time) ([]byte, error)
}

// State is a copy of the manager's visible state.
type State struct {
	Current *Handle
	// Frame is what the UI draws; it never changes after State returns.
	Frame  Frame
	Stamp  time.Time
	Active bool
	Err    string
}

// Manager runs on the scheduler loop.
type Manager struct {
	sched    sched.Scheduler
	fetch    Fetcher
	interval time.Duration

	current  *Handle
	stamp    time.Time
	lastErr  string
	pending  bool
	ticker   sched.Timer
	released int

	// OnChange runs after the current handle changes.
	OnChange func()
}

// NewManager creates a manager holding NoImage.
func NewManager(s sched.Scheduler, f Fetcher, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manager{sched: s, fetch: f, interval: interval, current: NoImage}
}

// State returns a copy of the visible state.
func (m *Manager) State() State {
	return State{
		Current: m.current,
		Frame:   m.current.Frame(),
		Stamp:   m.stamp,
		Active:  m.ticker != nil,
		Err:     m.lastErr,
	}
}

// Current returns the current handle.
func (m *Manager) Current() *Handle { return m.current }

// Released counts handles released so far.
func (m *Manager) Released() int { return m.released }

// Active reports whether the repeating refresh is armed.
func (m *Manager) Active() bool { return m.ticker != nil }

// SetWanted starts or stops the repeating refresh. Starting fetches at once.
func (m *Manager) SetWanted(wanted bool) {
	switch {
	case wanted && m.ticker == nil:
		m.ticker = m.sched.Every(m.interval, m.Refresh)
		m.Refresh()
		m.changed()
	case !wanted && m.ticker != nil:
		m.ticker = sched.Stop(m.ticker)
		m.changed()
	}
}

// Refresh fetches a new screenshot unless one is already in flight.
func (m *Manager) Refresh() {
	if m.pending {
		return
	}
	m.pending = true
	at := m.sched.Now()
	f := m.fetch
	m.sched.Go(func(ctx context.Context) func() {
		data, err := f.Screenshot(ctx, at)
		var h *Handle
		if err == nil {
			h, err = Decode(data)
		}
		return func() {
			m.pending = false
			if err != nil {
				log.Debug("screenshot: %v", err)
				m.lastErr = err.Error()
				m.adopt(NoImage, at)
				return
			}
			m.lastErr = ""
			m.adopt(h, at)
		}
	})
}

// Close stops the refresh and releases the current handle.
func (m *Manager) Close() {
	m.ticker = sched.Stop(m.ticker)
	m.adopt(NoImage, m.stamp)
}

func (m *Manager) adopt(h *Handle, at time.Time) {
	prev := m.current
	if prev != h && !prev.IsPlaceholder() && !prev.Released() {
		prev.Release()
		m.released++
	}
	if h == nil {
		h = NoImage
	}
	m.current = h
	if at.After(m.stamp) {
		m.stamp = at
	}
	m.changed()
}

func (m *Manager) changed() {
	if m.OnChange != nil {
		m.OnChange()
	}
}
