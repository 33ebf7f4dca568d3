package service

import (
	"fmt"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

// NotFoundError is returned when a requested resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ConflictError is returned when a resource with the same identifier already
// exists, or when it was modified concurrently (Reason is set).
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %q: %s", e.Resource, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s with id %q already exists", e.Resource, e.ID)
}

// ValidationError is returned when request data fails validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// InvalidTransitionError is returned when the workflow has no edge between
// the current and the requested status. Nothing is persisted or dispatched.
type InvalidTransitionError struct {
	OrderID int64
	From    order.Status
	To      order.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: cannot move from %q to %q", e.OrderID, e.From, e.To)
}

// UnavailableError is returned when an operation needs an integration that
// is not configured.
type UnavailableError struct {
	Feature string
}

func (e *UnavailableError) Error() string {
	return e.Feature + " is not configured"
}
