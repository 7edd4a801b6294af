// ABOUTME: Push connection state machine: heartbeat, fixed-delay reconnect, generation guard
// ABOUTME: Every transition runs on the scheduler loop; only the frame reader runs off-loop

package push

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mauromedda/seekdeck/internal/log"
	"github.com/mauromedda/seekdeck/internal/protocol"
	"github.com/mauromedda/seekdeck/internal/sched"
)

// Default timings.
const (
	DefaultHeartbeat  = 30 * time.Second
	DefaultReconnect  = 3 * time.Second
	DefaultRetryDelay = 5 * time.Second
)

// State is the user-visible connection state.
type State int

const (
	Disconnected State = iota
	Connected
	Error
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "disconnected"
	}
}

// Phase is the internal connection phase.
type Phase int

const (
	Idle Phase = iota
	Connecting
	Open
	Backoff
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Backoff:
		return "backoff"
	default:
		return "idle"
	}
}

// Timing configures the manager's delays.
type Timing struct {
	Heartbeat  time.Duration
	Reconnect  time.Duration
	RetryDelay time.Duration
}

func (t Timing) withDefaults() Timing {
	if t.Heartbeat <= 0 {
		t.Heartbeat = DefaultHeartbeat
	}
	if t.Reconnect <= 0 {
		t.Reconnect = DefaultReconnect
	}
	if t.RetryDelay <= 0 {
		t.RetryDelay = DefaultRetryDelay
	}
	return t
}

// Manager owns one push connection at a time.
type Manager struct {
	sched    sched.Scheduler
	dialer   Dialer
	endpoint func() (string, error)
	timing   Timing

	phase     Phase
	state     State
	gen       uint64
	conn      Conn
	heartbeat sched.Timer
	reconnect sched.Timer
	attempts  int
	pinging   bool

	// OnEvent receives each decoded frame.
	OnEvent func(protocol.Event)
	// OnState runs whenever State changes.
	OnState func(State)
}

// NewManager creates an idle manager. endpoint is consulted on every attempt.
func NewManager(s sched.Scheduler, d Dialer, endpoint func() (string, error), t Timing) *Manager {
	if d == nil {
		d = WebSocketDialer{}
	}
	return &Manager{sched: s, dialer: d, endpoint: endpoint, timing: t.withDefaults()}
}

// State returns the connection state.
func (m *Manager) State() State { return m.state }

// Phase returns the connection phase.
func (m *Manager) Phase() Phase { return m.phase }

// Attempts counts connection attempts since Open.
func (m *Manager) Attempts() int { return m.attempts }

// Open starts connecting. It is a no-op unless the manager is idle.
func (m *Manager) Open() {
	if m.phase != Idle {
		return
	}
	m.attempts = 0
	m.attempt()
}

// Close tears the connection down and cancels every timer.
func (m *Manager) Close() {
	m.gen++
	m.phase = Idle
	m.heartbeat = sched.Stop(m.heartbeat)
	m.reconnect = sched.Stop(m.reconnect)
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.setState(Disconnected)
}

// Send writes a frame on the open channel.
func (m *Manager) Send(data []byte) error {
	if m.phase != Open || m.conn == nil {
		return fmt.Errorf("push channel not open")
	}
	return m.conn.WriteMessage(data)
}

func (m *Manager) attempt() {
	m.reconnect = sched.Stop(m.reconnect)
	m.phase = Connecting
	m.attempts++

	target, err := m.resolve()
	if err != nil {
		log.Warn("push: %v; retrying in %s", err, m.timing.RetryDelay)
		m.phase = Backoff
		m.schedule(m.timing.RetryDelay)
		return
	}

	m.gen++
	gen := m.gen
	dialer := m.dialer
	log.Debug("push: dialing %s (attempt %d)", target, m.attempts)
	m.sched.Go(func(ctx context.Context) func() {
		conn, err := dialer.Dial(ctx, target)
		return func() {
			if gen != m.gen || m.phase != Connecting {
				if conn != nil {
					_ = conn.Close()
				}
				return
			}
			if err != nil {
				log.Debug("push: %v", err)
				m.setState(Error)
				m.closed(gen)
				return
			}
			m.opened(gen, conn)
		}
	})
}

func (m *Manager) resolve() (string, error) {
	if m.endpoint == nil {
		return "", fmt.Errorf("no push endpoint configured")
	}
	raw, err := m.endpoint()
	if err != nil {
		return "", fmt.Errorf("push endpoint: %w", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("push endpoint %q: %w", raw, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("push endpoint %q: scheme must be ws or wss", raw)
	}
	return raw, nil
}

func (m *Manager) opened(gen uint64, conn Conn) {
	m.conn = conn
	m.phase = Open
	m.attempts = 0
	m.pinging = false
	m.setState(Connected)
	m.heartbeat = sched.Stop(m.heartbeat)
	m.heartbeat = m.sched.Every(m.timing.Heartbeat, m.beat)
	go m.read(gen, conn)
}

// read pumps frames off-loop and posts each one back.
func (m *Manager) read(gen uint64, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.sched.Post(func() {
				if gen != m.gen {
					return
				}
				if !cleanClose(err) {
					log.Debug("push: read: %v", err)
					m.setState(Error)
				}
				m.closed(gen)
			})
			return
		}
		m.sched.Post(func() {
			if gen != m.gen {
				return
			}
			m.frame(data)
		})
	}
}

func (m *Manager) frame(data []byte) {
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		log.Warn("push: dropping frame: %v", err)
		return
	}
	if m.OnEvent != nil {
		m.OnEvent(ev)
	}
}

func (m *Manager) beat() {
	if m.phase != Open || m.conn == nil {
		m.heartbeat = sched.Stop(m.heartbeat)
		return
	}
	// The write can block up to the write deadline, so it runs off-loop.
	// A beat is skipped while the previous ping is still being written.
	if m.pinging {
		return
	}
	m.pinging = true
	conn, gen := m.conn, m.gen
	m.sched.Go(func(context.Context) func() {
		err := conn.WriteMessage(protocol.EncodePing())
		return func() {
			if gen == m.gen {
				m.pinging = false
			}
			if err != nil {
				log.Debug("push: ping: %v", err)
			}
		}
	})
}

// closed handles the end of connection gen and schedules the next attempt.
func (m *Manager) closed(gen uint64) {
	if gen != m.gen || m.phase == Idle || m.phase == Backoff {
		return
	}
	m.heartbeat = sched.Stop(m.heartbeat)
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.setState(Disconnected)
	m.phase = Backoff
	m.schedule(m.timing.Reconnect)
}

func (m *Manager) schedule(d time.Duration) {
	m.reconnect = sched.Stop(m.reconnect)
	m.reconnect = m.sched.AfterFunc(d, func() {
		m.reconnect = nil
		if m.phase == Backoff {
			m.attempt()
		}
	})
}

func (m *Manager) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	if m.OnState != nil {
		m.OnState(s)
	}
}
