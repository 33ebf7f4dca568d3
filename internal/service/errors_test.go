package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/service"
)

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.NotFoundError
		expected string
	}{
		{
			name:     "order",
			err:      &service.NotFoundError{Resource: "order", ID: "42"},
			expected: `order "42" not found`,
		},
		{
			name:     "user",
			err:      &service.NotFoundError{Resource: "user", ID: "0f8c"},
			expected: `user "0f8c" not found`,
		},
		{
			name:     "empty ID",
			err:      &service.NotFoundError{Resource: "order", ID: ""},
			expected: `order "" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestConflictError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.ConflictError
		expected string
	}{
		{
			name:     "duplicate",
			err:      &service.ConflictError{Resource: "user", ID: "+15550001111"},
			expected: `user with id "+15550001111" already exists`,
		},
		{
			name:     "concurrent modification",
			err:      &service.ConflictError{Resource: "order", ID: "42", Reason: "status changed concurrently"},
			expected: `order "42": status changed concurrently`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.ValidationError
		expected string
	}{
		{
			name:     "with field and message",
			err:      &service.ValidationError{Field: "status", Message: "unknown status"},
			expected: `validation error for "status": unknown status`,
		},
		{
			name:     "without field returns message only",
			err:      &service.ValidationError{Message: "invalid request body"},
			expected: "invalid request body",
		},
		{
			name:     "both empty",
			err:      &service.ValidationError{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := fmt.Errorf("changing status: %w", &service.InvalidTransitionError{
		OrderID: 42, From: order.StatusCompleted, To: order.StatusPending,
	})

	var target *service.InvalidTransitionError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, int64(42), target.OrderID)
	assert.Equal(t, `order 42: cannot move from "completed" to "pending"`, target.Error())
}

func TestUnavailableError(t *testing.T) {
	var err error = &service.UnavailableError{Feature: "phone verification"}
	assert.EqualError(t, err, "phone verification is not configured")
}
