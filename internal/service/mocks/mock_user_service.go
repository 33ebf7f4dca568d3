package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloudcitycakeco/cakeorders/internal/service"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

//nolint:revive
func (m *MockUserService) Register(ctx context.Context, req service.RegisterUserRequest) (*storage.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.User), args.Error(1)
}

//nolint:revive
func (m *MockUserService) Get(ctx context.Context, id string) (*storage.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.User), args.Error(1)
}

//nolint:revive
func (m *MockUserService) GetByPhone(ctx context.Context, phone string) (*storage.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.User), args.Error(1)
}

//nolint:revive
func (m *MockUserService) StartPhoneVerification(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

//nolint:revive
func (m *MockUserService) ConfirmPhoneVerification(ctx context.Context, id, code string) (*storage.User, error) {
	args := m.Called(ctx, id, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.User), args.Error(1)
}
