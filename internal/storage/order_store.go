package storage

import (
	"context"
	"time"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

// OrderStore defines the interface for cake order persistence.
type OrderStore interface {
	// CreateOrder inserts o and sets its ID.
	CreateOrder(ctx context.Context, o *order.Order) error
	// GetOrder returns the order with the given ID, or nil if not found.
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	// ListOrders returns orders newest first. An empty userID lists all orders.
	ListOrders(ctx context.Context, userID string, limit int) ([]*order.Order, error)
	// UpdateStatus moves order id from -> to. It returns false without
	// changing anything when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to order.Status, at time.Time) (bool, error)
}
