package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteNotificationStore implements NotificationStore backed by SQLite.
type SQLiteNotificationStore struct {
	db *sql.DB
}

// NewSQLiteNotificationStore returns a new SQLiteNotificationStore.
func NewSQLiteNotificationStore(db *sql.DB) *SQLiteNotificationStore {
	return &SQLiteNotificationStore{db: db}
}

// LogNotification inserts a notification delivery record into the database.
func (s *SQLiteNotificationStore) LogNotification(ctx context.Context, entry NotificationLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_log (dispatch_id, order_id, rule, channel, recipient, status, error_msg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.DispatchID, entry.OrderID, entry.Rule, entry.Channel,
		entry.Recipient, entry.Status, entry.ErrorMsg, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting notification log: %w", err)
	}
	return nil
}

// ListNotifications returns the most recent log entries, newest first.
func (s *SQLiteNotificationStore) ListNotifications(ctx context.Context, limit int) ([]NotificationLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dispatch_id, order_id, rule, channel, recipient, status, error_msg, created_at
		FROM notification_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notification log: %w", err)
	}
	return scanNotificationRows(rows)
}

// ListOrderNotifications returns all entries for orderID in insertion order.
func (s *SQLiteNotificationStore) ListOrderNotifications(ctx context.Context, orderID int64) ([]NotificationLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dispatch_id, order_id, rule, channel, recipient, status, error_msg, created_at
		FROM notification_log
		WHERE order_id = ?
		ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying notification log for order %d: %w", orderID, err)
	}
	return scanNotificationRows(rows)
}

// PruneNotifications removes entries older than cutoff. Timestamps are stored
// in UTC so the comparison is done in UTC as well.
func (s *SQLiteNotificationStore) PruneNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notification_log WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning notification log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return n, nil
}

func scanNotificationRows(rows *sql.Rows) ([]NotificationLogEntry, error) {
	defer rows.Close() //nolint:errcheck

	entries := make([]NotificationLogEntry, 0)
	for rows.Next() {
		var e NotificationLogEntry
		if err := rows.Scan(&e.ID, &e.DispatchID, &e.OrderID, &e.Rule, &e.Channel,
			&e.Recipient, &e.Status, &e.ErrorMsg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification log rows: %w", err)
	}
	return entries, nil
}
