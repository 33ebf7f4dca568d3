package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strconv"
	"strings"

	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

const (
	testEmailSubject = "Cloud City Cake Co. test notification"
	testEmailBody    = "This is a test notification from Cloud City Cake Co.\n\nYour email configuration is working correctly."
)

// RuleInfo describes one registered notification rule.
type RuleInfo struct {
	Name    string               `json:"name"`
	Trigger order.Status         `json:"trigger"`
	Channel notification.Channel `json:"channel"`
	From    []order.Status       `json:"from,omitempty"`
}

// NotificationService exposes the notification log and transport checks.
type NotificationService interface {
	// ListLog returns the most recent notification log entries.
	ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error)
	// ListOrderLog returns every notification recorded for one order.
	ListOrderLog(ctx context.Context, orderID int64) ([]storage.NotificationLogEntry, error)
	// Rules returns the registered rules in registration order.
	Rules() []RuleInfo
	// SendTestEmail sends a test email to verify the SMTP credentials.
	SendTestEmail(ctx context.Context, to string) error
}

type notificationService struct {
	store  storage.NotificationStore
	orders storage.OrderStore
	rules  *notification.RuleSet
	email  notification.EmailSender
	logger *slog.Logger
}

// NewNotificationService creates a new NotificationService. A nil email sender
// makes SendTestEmail report the transport as unavailable.
func NewNotificationService(
	store storage.NotificationStore,
	orders storage.OrderStore,
	rules *notification.RuleSet,
	email notification.EmailSender,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		store:  store,
		orders: orders,
		rules:  rules,
		email:  email,
		logger: logger,
	}
}

func (s *notificationService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	if limit < 0 {
		return nil, &ValidationError{Field: "limit", Message: "limit must not be negative"}
	}
	entries, err := s.store.ListNotifications(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notification log: %w", err)
	}
	return entries, nil
}

func (s *notificationService) ListOrderLog(ctx context.Context, orderID int64) ([]storage.NotificationLogEntry, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("looking up order: %w", err)
	}
	if o == nil {
		return nil, &NotFoundError{Resource: "order", ID: strconv.FormatInt(orderID, 10)}
	}
	entries, err := s.store.ListOrderNotifications(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications of order %d: %w", orderID, err)
	}
	return entries, nil
}

func (s *notificationService) Rules() []RuleInfo {
	rules := s.rules.Rules()
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleInfo{Name: r.Name, Trigger: r.Trigger, Channel: r.Channel, From: slices.Clone(r.From)})
	}
	return out
}

// SendTestEmail bypasses the rule set entirely so credentials can be checked
// before any order exists.
func (s *notificationService) SendTestEmail(ctx context.Context, to string) error {
	if s.email == nil {
		return &UnavailableError{Feature: "email transport"}
	}
	to = strings.TrimSpace(to)
	if _, err := mail.ParseAddress(to); err != nil {
		return &ValidationError{Field: "to", Message: "invalid email address"}
	}
	if err := s.email.SendEmail(ctx, to, testEmailSubject, testEmailBody); err != nil {
		s.logger.Warn("test email failed", "error", err)
		return fmt.Errorf("sending test email: %w", err)
	}
	s.logger.Info("test email sent")
	return nil
}
