package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLiteUserStore implements UserStore backed by a SQLite database.
type SQLiteUserStore struct {
	db *sql.DB
}

// NewSQLiteUserStore returns a new SQLiteUserStore.
func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

// AddUser inserts a user, generating an ID when none is set.
func (s *SQLiteUserStore) AddUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, phone_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, u.PhoneVerified, u.CreatedAt.UTC(), u.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.phone") {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID, or nil if not found.
func (s *SQLiteUserStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, phone_verified, created_at, updated_at
		FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return u, nil
}

// GetUserByPhoneNumber returns the user registered with phone, or nil if none.
func (s *SQLiteUserStore) GetUserByPhoneNumber(ctx context.Context, phone string) (*User, error) {
	if phone == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, phone_verified, created_at, updated_at
		FROM users WHERE phone = ?`, phone)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("getting user by phone: %w", err)
	}
	return u, nil
}

// SetPhoneVerified updates the phone verification flag.
func (s *SQLiteUserStore) SetPhoneVerified(ctx context.Context, id string, verified bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET phone_verified = ?, updated_at = ? WHERE id = ?`,
		verified, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating phone verification for user %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking phone verification update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %q: %w", id, sql.ErrNoRows)
	}
	return nil
}

// scanUser returns nil, nil when the row does not exist.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PhoneVerified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
