package events

import (
	"sync"
	"time"
)

// Handler processes a single event.
type Handler func(Event)

// Bus fans events out to subscribed handlers. Dispatch is synchronous and
// in subscription order, so handlers observe events in the order the
// lifecycle produced them.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
	closed   bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all future events.
func (b *Bus) Subscribe(handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Emit stamps the event and delivers it to every handler. Events emitted
// after Close are dropped. The handler list is snapshotted under the
// lock and dispatch happens outside it, so handlers may subscribe or
// re-emit without deadlocking.
func (b *Bus) Emit(event Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Close shuts down the event bus.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
