// Package eventbus is an in-memory, asynchronous event bus for order
// lifecycle events. Events are queued on a buffered channel and delivered to
// listeners by a small worker pool, so publishing never blocks the request
// that changed the order.
package eventbus

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultWorkers    = 3
	defaultBufferSize = 100
)

// EventBus publishes events to subscribed listeners.
type EventBus interface {
	// Publish enqueues an event. It never blocks: when the buffer is full the
	// event is dropped and counted.
	Publish(eventType string, payload map[string]string)

	// Subscribe registers a listener for every event type.
	Subscribe(listener Listener)

	// SubscribeTo registers a listener for a single event type.
	SubscribeTo(eventType string, listener Listener)

	// Dropped returns how many events were discarded because the buffer was full.
	Dropped() uint64

	// Close stops accepting events and waits for queued ones to be delivered.
	Close()
}

type subscription struct {
	eventType string // empty means all
	listener  Listener
}

type inMemoryBus struct {
	ch      chan Event
	subs    []subscription
	mu      sync.RWMutex
	wg      sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	logger  *slog.Logger
}

// New creates an EventBus with the given number of workers. workers <= 0
// uses the default; a nil logger uses slog.Default().
func New(workers int, logger *slog.Logger) EventBus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &inMemoryBus{
		ch:     make(chan Event, defaultBufferSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for e := range b.ch {
				b.deliver(e)
			}
		}()
	}
	return b
}

// deliver calls every matching listener, isolating panics per listener.
func (b *inMemoryBus) deliver(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.eventType != "" && s.eventType != e.Type {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event listener panicked", "event", e.Type, "panic", r)
				}
			}()
			s.listener(e)
		}()
	}
}

func (b *inMemoryBus) Publish(eventType string, payload map[string]string) {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return
	}
	e := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	select {
	case b.ch <- e:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event buffer full, dropping event", "event", eventType)
	}
}

func (b *inMemoryBus) Subscribe(listener Listener) {
	b.SubscribeTo("", listener)
}

func (b *inMemoryBus) SubscribeTo(eventType string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{eventType: eventType, listener: listener})
}

func (b *inMemoryBus) Dropped() uint64 { return b.dropped.Load() }

func (b *inMemoryBus) Close() {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return
	}
	b.closed = true
	close(b.ch)
	b.closeMu.Unlock()
	b.wg.Wait()
}
