// Package order defines the cake order domain: statuses, the contact snapshot
// taken when an order is placed, and the transition value handed to the
// notification dispatcher after every committed status change.
package order

import (
	"strings"
	"time"
)

// Status is a lifecycle state of a cake order. The set of valid statuses is
// configuration-defined; the constants below are the defaults.
type Status string

// Default order statuses.
const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus normalizes a user-supplied status string.
func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

func (s Status) String() string { return string(s) }

// Contact is the snapshot of customer contact details captured at order time.
// Later changes to the user record do not affect an existing order.
type Contact struct {
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PhoneVerified bool   `json:"phone_verified"`
}

// Order is a single cake order.
type Order struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Contact     Contact   `json:"contact"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Transition describes one committed status change of an order.
// It is passed by value and never persisted.
type Transition struct {
	Order Order     `json:"order"`
	From  Status    `json:"from"`
	To    Status    `json:"to"`
	At    time.Time `json:"at"`
}

// NewTransition builds the transition for o moving from -> to. The order
// carried by the transition already reflects the new status.
func NewTransition(o Order, from, to Status, at time.Time) Transition {
	o.Status = to
	return Transition{Order: o, From: from, To: to, At: at}
}

// IsNoop reports whether the transition leaves the status unchanged.
func (t Transition) IsNoop() bool {
	return t.From == t.To
}
