package eventbus_test

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcitycakeco/cakeorders/internal/eventbus"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPublishAndReceive(t *testing.T) {
	bus := eventbus.New(2, discard())

	var received []eventbus.Event
	var mu sync.Mutex
	bus.Subscribe(func(e eventbus.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	bus.Publish("order.created", map[string]string{"order_id": "42"})
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "order.created", received[0].Type)
	assert.Equal(t, "42", received[0].Payload["order_id"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestSubscribeTo_FiltersByType(t *testing.T) {
	bus := eventbus.New(1, discard())

	var all, changed int32
	bus.Subscribe(func(eventbus.Event) { atomic.AddInt32(&all, 1) })
	bus.SubscribeTo("order.status_changed", func(eventbus.Event) { atomic.AddInt32(&changed, 1) })

	bus.Publish("order.created", nil)
	bus.Publish("order.status_changed", nil)
	bus.Publish("order.status_changed", nil)
	bus.Close()

	assert.EqualValues(t, 3, atomic.LoadInt32(&all))
	assert.EqualValues(t, 2, atomic.LoadInt32(&changed))
}

func TestListenerPanicDoesNotCrash(t *testing.T) {
	bus := eventbus.New(1, discard())

	var goodCalled int32
	bus.Subscribe(func(eventbus.Event) { panic("listener blew up") })
	bus.Subscribe(func(eventbus.Event) { atomic.AddInt32(&goodCalled, 1) })

	bus.Publish("order.created", nil)
	bus.Close()

	assert.EqualValues(t, 1, atomic.LoadInt32(&goodCalled))
}

func TestClose_DrainsQueue(t *testing.T) {
	bus := eventbus.New(2, discard())

	var count int32
	bus.Subscribe(func(eventbus.Event) { atomic.AddInt32(&count, 1) })
	for i := 0; i < 5; i++ {
		bus.Publish("evt", nil)
	}
	bus.Close()
	bus.Close()

	assert.EqualValues(t, 5, atomic.LoadInt32(&count))
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	bus := eventbus.New(1, discard())
	bus.Close()

	assert.NotPanics(t, func() { bus.Publish("late", nil) })
	assert.EqualValues(t, 1, bus.Dropped())
}

func TestFullBufferDropsEvents(t *testing.T) {
	bus := eventbus.New(1, discard())

	release := make(chan struct{})
	bus.Subscribe(func(eventbus.Event) { <-release })

	// One event is held by the worker, the rest fill the buffer.
	for i := 0; i < 150; i++ {
		bus.Publish("evt", nil)
	}
	assert.Positive(t, bus.Dropped())

	close(release)
	bus.Close()
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	l := eventbus.LogListener(slog.New(slog.NewJSONHandler(&buf, nil)))

	l(eventbus.Event{Type: "order.status_changed", Timestamp: time.Now(), Payload: map[string]string{"to": "accepted"}})

	assert.Contains(t, buf.String(), `"event":"order.status_changed"`)
	assert.Contains(t, buf.String(), `"to":"accepted"`)
}

func TestDefaultWorkers(t *testing.T) {
	bus := eventbus.New(0, nil)
	require.NotNil(t, bus)
	bus.Close()
}
