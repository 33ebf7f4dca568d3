package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/service"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

//nolint:revive
func (m *MockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*order.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

//nolint:revive
func (m *MockOrderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

//nolint:revive
func (m *MockOrderService) ListOrders(ctx context.Context, userID string, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

//nolint:revive
func (m *MockOrderService) ChangeStatus(ctx context.Context, id int64, status order.Status) (*service.StatusChange, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatusChange), args.Error(1)
}
