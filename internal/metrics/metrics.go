// Package metrics exposes Prometheus metrics for order transitions and
// notification delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

const namespace = "cakeorders"

// Recorder collects order and notification metrics on its own registry.
// It implements notification.Recorder and service.TransitionRecorder.
type Recorder struct {
	registry      *prometheus.Registry
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	sendDuration  *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Committed order status transitions.",
		}, []string{"from", "to"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification dispatch results by rule, channel and outcome.",
		}, []string{"rule", "channel", "outcome"}),
		sendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_send_duration_seconds",
			Help:      "Time spent delivering a notification, skipped ones excluded.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"channel"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.transitions,
		r.notifications,
		r.sendDuration,
	)
	return r
}

// RecordTransition counts a committed status change.
func (r *Recorder) RecordTransition(from, to order.Status) {
	r.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordResult counts one dispatch result.
func (r *Recorder) RecordResult(res notification.Result) {
	r.notifications.WithLabelValues(res.Rule, string(res.Channel), string(res.Outcome)).Inc()
	if res.Outcome != notification.OutcomeSkipped {
		r.sendDuration.WithLabelValues(string(res.Channel)).Observe(res.Duration.Seconds())
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
