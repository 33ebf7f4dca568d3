package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/service"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
	"github.com/cloudcitycakeco/cakeorders/internal/storage/mocks"
)

type stubEmail struct {
	to  []string
	err error
}

func (s *stubEmail) SendEmail(_ context.Context, to, _, _ string) error {
	s.to = append(s.to, to)
	return s.err
}

func testRuleSet(t *testing.T) *notification.RuleSet {
	t.Helper()
	r, err := notification.TemplateRule("order-accepted", order.StatusAccepted, notification.ChannelEmail,
		[]order.Status{order.StatusPending}, "", "Order #{{.OrderID}} accepted")
	require.NoError(t, err)
	rs, err := notification.NewRuleSet(r)
	require.NoError(t, err)
	return rs
}

func newTestNotificationService(
	t *testing.T, store *mocks.MockNotificationStore, orders *mocks.MockOrderStore, email notification.EmailSender,
) service.NotificationService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewNotificationService(store, orders, testRuleSet(t), email, logger)
}

func TestNotificationService_ListLog(t *testing.T) {
	store := new(mocks.MockNotificationStore)
	store.On("ListNotifications", mock.Anything, 20).Return([]storage.NotificationLogEntry{
		{ID: 1, Rule: "order-accepted", Status: "sent"},
	}, nil)

	svc := newTestNotificationService(t, store, new(mocks.MockOrderStore), nil)
	entries, err := svc.ListLog(context.Background(), 20)

	require.NoError(t, err)
	assert.Len(t, entries, 1)
	store.AssertExpectations(t)

	_, err = svc.ListLog(context.Background(), -1)
	var ve *service.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestNotificationService_ListLogError(t *testing.T) {
	store := new(mocks.MockNotificationStore)
	store.On("ListNotifications", mock.Anything, 0).Return(nil, errors.New("db error"))

	_, err := newTestNotificationService(t, store, new(mocks.MockOrderStore), nil).ListLog(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing notification log")
}

func TestNotificationService_ListOrderLog(t *testing.T) {
	store := new(mocks.MockNotificationStore)
	orders := new(mocks.MockOrderStore)
	orders.On("GetOrder", mock.Anything, int64(42)).Return(&order.Order{ID: 42}, nil)
	orders.On("GetOrder", mock.Anything, int64(43)).Return(nil, nil)
	store.On("ListOrderNotifications", mock.Anything, int64(42)).Return([]storage.NotificationLogEntry{
		{OrderID: 42, Channel: "email"}, {OrderID: 42, Channel: "sms"},
	}, nil)

	svc := newTestNotificationService(t, store, orders, nil)

	entries, err := svc.ListOrderLog(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = svc.ListOrderLog(context.Background(), 43)
	var nf *service.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestNotificationService_Rules(t *testing.T) {
	svc := newTestNotificationService(t, new(mocks.MockNotificationStore), new(mocks.MockOrderStore), nil)

	assert.Equal(t, []service.RuleInfo{{
		Name:    "order-accepted",
		Trigger: order.StatusAccepted,
		Channel: notification.ChannelEmail,
		From:    []order.Status{order.StatusPending},
	}}, svc.Rules())
}

func TestNotificationService_RulesAreCopies(t *testing.T) {
	svc := newTestNotificationService(t, new(mocks.MockNotificationStore), new(mocks.MockOrderStore), nil)

	infos := svc.Rules()
	require.Len(t, infos, 1)
	infos[0].From[0] = order.StatusCompleted

	assert.Equal(t, []order.Status{order.StatusPending}, svc.Rules()[0].From)
}

func TestNotificationService_SendTestEmail(t *testing.T) {
	email := &stubEmail{}
	svc := newTestNotificationService(t, new(mocks.MockNotificationStore), new(mocks.MockOrderStore), email)

	require.NoError(t, svc.SendTestEmail(context.Background(), " ops@cloudcity.example "))
	assert.Equal(t, []string{"ops@cloudcity.example"}, email.to)

	var ve *service.ValidationError
	assert.ErrorAs(t, svc.SendTestEmail(context.Background(), "nope"), &ve)
}

func TestNotificationService_SendTestEmailFailure(t *testing.T) {
	email := &stubEmail{err: &notification.SendError{Provider: "smtp", Err: errors.New("auth failed")}}
	svc := newTestNotificationService(t, new(mocks.MockNotificationStore), new(mocks.MockOrderStore), email)

	err := svc.SendTestEmail(context.Background(), "ops@cloudcity.example")
	var se *notification.SendError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "sending test email")
}

func TestNotificationService_SendTestEmailUnavailable(t *testing.T) {
	svc := newTestNotificationService(t, new(mocks.MockNotificationStore), new(mocks.MockOrderStore), nil)

	var ue *service.UnavailableError
	assert.ErrorAs(t, svc.SendTestEmail(context.Background(), "ops@cloudcity.example"), &ue)
}
