package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

// MockOrderStore is a mock implementation of storage.OrderStore.
type MockOrderStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

//nolint:revive
func (m *MockOrderStore) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

//nolint:revive
func (m *MockOrderStore) ListOrders(ctx context.Context, userID string, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

//nolint:revive
func (m *MockOrderStore) UpdateStatus(ctx context.Context, id int64, from, to order.Status, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}
