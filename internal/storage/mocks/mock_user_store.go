package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

// MockUserStore is a mock implementation of storage.UserStore.
type MockUserStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockUserStore) AddUser(ctx context.Context, u *storage.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

//nolint:revive
func (m *MockUserStore) GetUser(ctx context.Context, id string) (*storage.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.User), args.Error(1)
}

//nolint:revive
func (m *MockUserStore) GetUserByPhoneNumber(ctx context.Context, phone string) (*storage.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.User), args.Error(1)
}

//nolint:revive
func (m *MockUserStore) SetPhoneVerified(ctx context.Context, id string, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}
