package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcitycakeco/cakeorders/internal/metrics"
	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

func TestRecorder_Transitions(t *testing.T) {
	r := metrics.NewRecorder()
	r.RecordTransition(order.StatusPending, order.StatusAccepted)
	r.RecordTransition(order.StatusPending, order.StatusAccepted)
	r.RecordTransition(order.StatusAccepted, order.StatusCompleted)

	n, err := testutil.GatherAndCount(r.Registry(), "cakeorders_order_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per from/to pair")
}

func TestRecorder_Results(t *testing.T) {
	r := metrics.NewRecorder()
	r.RecordResult(notification.Result{Rule: "order-accepted", Channel: notification.ChannelEmail, Outcome: notification.OutcomeSent, Duration: 20 * time.Millisecond})
	r.RecordResult(notification.Result{Rule: "order-accepted", Channel: notification.ChannelSMS, Outcome: notification.OutcomeSkipped})
	r.RecordResult(notification.Result{Rule: "order-accepted", Channel: notification.ChannelEmail, Outcome: notification.OutcomeSent, Duration: time.Second})

	n, err := testutil.GatherAndCount(r.Registry(), "cakeorders_notifications_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(r.Registry(), "cakeorders_notification_send_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "skipped results are not timed")
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.NewRecorder()
	r.RecordTransition(order.StatusPending, order.StatusCancelled)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cakeorders_order_transitions_total{from="pending",to="cancelled"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
