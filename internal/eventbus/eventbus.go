// ABOUTME: Typed event bus delivering dispatcher events to observers
// ABOUTME: Events queue up and are drained in order; handlers may publish again

package eventbus

import (
	"slices"
	"sync"

	"github.com/mauromedda/hookwire/internal/log"
)

// Handler is a callback function for events.
type Handler[T any] func(T)

type subscription[T any] struct {
	id int
	fn Handler[T]
}

// Bus is a typed event bus. Every handler sees events in the order they
// were published. No lock is held while handlers run, so a handler may
// publish or subscribe without deadlocking.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers []subscription[T]
	nextID   int

	qmu      sync.Mutex
	queue    []T
	draining bool
}

// New creates a new event bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a handler and returns an unsubscribe function.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers = append(b.handlers, subscription[T]{id: id, fn: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.handlers = slices.DeleteFunc(b.handlers, func(s subscription[T]) bool { return s.id == id })
		b.mu.Unlock()
	}
}

// Publish sends an event to all registered handlers in subscription order.
// When no delivery is in progress the caller delivers it, and every event
// queued meanwhile, before returning. Otherwise the event is queued behind
// the delivery in progress, which includes publishes made from a handler.
// A panicking handler is logged and skipped.
func (b *Bus[T]) Publish(event T) {
	b.qmu.Lock()
	b.queue = append(b.queue, event)
	if b.draining {
		b.qmu.Unlock()
		return
	}
	b.draining = true
	b.qmu.Unlock()

	for {
		b.qmu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.qmu.Unlock()
			return
		}
		next := b.queue[0]
		var zero T
		b.queue[0] = zero
		b.queue = b.queue[1:]
		b.qmu.Unlock()

		b.mu.RLock()
		snapshot := slices.Clone(b.handlers)
		b.mu.RUnlock()
		for _, s := range snapshot {
			deliver(s.fn, next)
		}
	}
}

func deliver[T any](h Handler[T], event T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panic: %v", r)
		}
	}()
	h(event)
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
