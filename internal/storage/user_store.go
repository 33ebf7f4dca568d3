package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicatePhone is returned when a phone number is already registered.
var ErrDuplicatePhone = errors.New("phone number already registered")

// User is a customer who places cake orders.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserStore defines the interface for customer persistence.
type UserStore interface {
	// AddUser inserts a user. It returns ErrDuplicatePhone when the phone is taken.
	AddUser(ctx context.Context, u *User) error
	// GetUser returns the user with the given ID, or nil if not found.
	GetUser(ctx context.Context, id string) (*User, error)
	// GetUserByPhoneNumber returns the user owning phone, or nil if none.
	GetUserByPhoneNumber(ctx context.Context, phone string) (*User, error)
	// SetPhoneVerified records the verification state of the user's phone.
	SetPhoneVerified(ctx context.Context, id string, verified bool) error
}
