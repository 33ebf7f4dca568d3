package eventbus

import (
	"log/slog"
	"time"
)

// Event is an application event published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener handles an event.
type Listener func(Event)

// LogListener returns a listener that writes every event to logger.
func LogListener(logger *slog.Logger) Listener {
	return func(e Event) {
		attrs := make([]any, 0, 2+2*len(e.Payload))
		attrs = append(attrs, "event", e.Type)
		for k, v := range e.Payload {
			attrs = append(attrs, k, v)
		}
		logger.Info("order event", attrs...)
	}
}
