package storage

import (
	"context"
	"time"
)

// NotificationLogEntry records the outcome of one rule during one dispatch.
type NotificationLogEntry struct {
	ID         int64     `json:"id"`
	DispatchID string    `json:"dispatch_id"`
	OrderID    int64     `json:"order_id"`
	Rule       string    `json:"rule"`
	Channel    string    `json:"channel"`
	Recipient  string    `json:"recipient"`
	Status     string    `json:"status"`
	ErrorMsg   string    `json:"error_msg"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationStore defines the interface for persisting notification delivery logs.
type NotificationStore interface {
	// LogNotification records a notification delivery attempt.
	LogNotification(ctx context.Context, entry NotificationLogEntry) error
	// ListNotifications returns the most recent notification log entries, up to limit.
	ListNotifications(ctx context.Context, limit int) ([]NotificationLogEntry, error)
	// ListOrderNotifications returns every entry recorded for one order, oldest first.
	ListOrderNotifications(ctx context.Context, orderID int64) ([]NotificationLogEntry, error)
	// PruneNotifications deletes entries created before cutoff and returns how many were removed.
	PruneNotifications(ctx context.Context, cutoff time.Time) (int64, error)
}
