// ABOUTME: Typed latest-value bus: new subscribers immediately receive the current value
// ABOUTME: Watch hands out a coalescing channel so slow readers only see the newest value

package eventbus

import "sync"

// Handler is a callback function for values.
type Handler[T any] func(T)

// Bus holds the latest published value and fans it out to subscribers.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers map[int]Handler[T]
	nextID   int
	latest   T
	has      bool
	seq      uint64
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		handlers: make(map[int]Handler[T]),
	}
}

// Subscribe registers a handler and returns an unsubscribe function. If a
// value was already published, handler receives it before Subscribe returns.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	latest, has := b.latest, b.has
	b.mu.Unlock()

	if has {
		handler(latest)
	}

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish stores v as the latest value and calls every handler synchronously.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	b.latest = v
	b.has = true
	b.seq++
	snapshot := make([]Handler[T], 0, len(b.handlers))
	for _, h := range b.handlers {
		snapshot = append(snapshot, h)
	}
	b.mu.Unlock()

	for _, h := range snapshot {
		h(v)
	}
}

// Latest returns the most recent value and whether one was published.
func (b *Bus[T]) Latest() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.has
}

// Seq counts publishes so far.
func (b *Bus[T]) Seq() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seq
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Watch returns a channel carrying the newest value. Values published while
// the reader is busy replace the pending one instead of queueing. The
// channel is closed by the returned stop function.
func (b *Bus[T]) Watch() (<-chan T, func()) {
	ch := make(chan T, 1)
	var mu sync.Mutex
	stopped := false

	unsub := b.Subscribe(func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		for {
			select {
			case ch <- v:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	})

	return ch, func() {
		unsub()
		mu.Lock()
		defer mu.Unlock()
		if !stopped {
			stopped = true
			close(ch)
		}
	}
}
