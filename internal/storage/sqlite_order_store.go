package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

// SQLiteOrderStore implements OrderStore backed by a SQLite database.
type SQLiteOrderStore struct {
	db *sql.DB
}

// NewSQLiteOrderStore returns a new SQLiteOrderStore.
func NewSQLiteOrderStore(db *sql.DB) *SQLiteOrderStore {
	return &SQLiteOrderStore{db: db}
}

const orderColumns = `id, user_id, description, status, contact_email, contact_phone,
	contact_phone_verified, created_at, updated_at`

// CreateOrder inserts a new order and assigns its auto-incremented ID.
func (s *SQLiteOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (user_id, description, status, contact_email, contact_phone,
		                    contact_phone_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, o.Description, string(o.Status), o.Contact.Email, o.Contact.Phone,
		o.Contact.PhoneVerified, o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading order id: %w", err)
	}
	o.ID = id
	return nil
}

// GetOrder returns an order by ID, or nil if not found.
func (s *SQLiteOrderStore) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return o, nil
}

// ListOrders returns orders ordered by creation time descending.
func (s *SQLiteOrderStore) ListOrders(ctx context.Context, userID string, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders
			ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders
			WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	orders := make([]*order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus performs a compare-and-set on the order status.
func (s *SQLiteOrderStore) UpdateStatus(ctx context.Context, id int64, from, to order.Status, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(to), at.UTC(), id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("updating status of order %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking status update of order %d: %w", id, err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o      order.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.Description, &status,
		&o.Contact.Email, &o.Contact.Phone, &o.Contact.PhoneVerified,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	return &o, nil
}
