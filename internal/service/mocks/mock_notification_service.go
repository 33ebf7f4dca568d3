package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloudcitycakeco/cakeorders/internal/service"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

// MockNotificationService is a mock implementation of service.NotificationService.
type MockNotificationService struct {
	mock.Mock
}

//nolint:revive
func (m *MockNotificationService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.NotificationLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) ListOrderLog(ctx context.Context, orderID int64) ([]storage.NotificationLogEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.NotificationLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) Rules() []service.RuleInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]service.RuleInfo)
}

//nolint:revive
func (m *MockNotificationService) SendTestEmail(ctx context.Context, to string) error {
	args := m.Called(ctx, to)
	return args.Error(0)
}
