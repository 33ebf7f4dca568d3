package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloudcitycakeco/cakeorders/internal/storage"
	"github.com/cloudcitycakeco/cakeorders/internal/storage/mocks"
)

type stubVerifier struct {
	started  []string
	approved bool
	err      error
}

func (v *stubVerifier) StartVerification(_ context.Context, phone string) error {
	v.started = append(v.started, phone)
	return v.err
}

func (v *stubVerifier) CheckVerification(_ context.Context, _, code string) (bool, error) {
	if v.err != nil {
		return false, v.err
	}
	return v.approved && code == "123456", nil
}

func newTestUserService(repo *mocks.MockUserStore, v *stubVerifier) UserService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if v == nil {
		return NewUserService(repo, nil, logger)
	}
	return NewUserService(repo, v, logger)
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("AddUser", mock.Anything, mock.MatchedBy(func(u *storage.User) bool {
		return u.Name == "Lando" && u.Phone == "+15550001111" && u.Email == "lando@example.com"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*storage.User).ID = "u1"
	}).Return(nil)

	svc := newTestUserService(repo, nil)
	u, err := svc.Register(context.Background(), RegisterUserRequest{
		Name: " Lando ", Email: "lando@example.com", Phone: "+15550001111",
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.False(t, u.PhoneVerified)
	repo.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterUserRequest
		field string
	}{
		{"missing name", RegisterUserRequest{Email: "a@b.com"}, "name"},
		{"no contact", RegisterUserRequest{Name: "x"}, ""},
		{"bad email", RegisterUserRequest{Name: "x", Email: "nope"}, "email"},
		{"bad phone", RegisterUserRequest{Name: "x", Phone: "555-1234"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockUserStore)
			svc := newTestUserService(repo, nil)

			_, err := svc.Register(context.Background(), tt.req)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			repo.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_DuplicatePhone(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("AddUser", mock.Anything, mock.Anything).Return(storage.ErrDuplicatePhone)

	svc := newTestUserService(repo, nil)
	_, err := svc.Register(context.Background(), RegisterUserRequest{Name: "x", Phone: "+15550001111"})

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "+15550001111", ce.ID)
}

// ---------------------------------------------------------------------------
// Get / GetByPhone
// ---------------------------------------------------------------------------

func TestGetUser_NotFound(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUser", mock.Anything, "missing").Return(nil, nil)

	_, err := newTestUserService(repo, nil).Get(context.Background(), "missing")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestGetByPhone(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUserByPhoneNumber", mock.Anything, "+15550001111").Return(&storage.User{ID: "u1"}, nil)
	repo.On("GetUserByPhoneNumber", mock.Anything, "+15559999999").Return(nil, nil)
	svc := newTestUserService(repo, nil)

	u, err := svc.GetByPhone(context.Background(), " +15550001111 ")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = svc.GetByPhone(context.Background(), "+15559999999")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = svc.GetByPhone(context.Background(), "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

// ---------------------------------------------------------------------------
// Phone verification
// ---------------------------------------------------------------------------

func TestStartPhoneVerification(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUser", mock.Anything, "u1").Return(&storage.User{ID: "u1", Phone: "+15550001111"}, nil)
	v := &stubVerifier{}

	err := newTestUserService(repo, v).StartPhoneVerification(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []string{"+15550001111"}, v.started)
}

func TestStartPhoneVerification_NoPhone(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUser", mock.Anything, "u1").Return(&storage.User{ID: "u1", Email: "a@b.com"}, nil)

	err := newTestUserService(repo, &stubVerifier{}).StartPhoneVerification(context.Background(), "u1")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestStartPhoneVerification_Unavailable(t *testing.T) {
	err := newTestUserService(new(mocks.MockUserStore), nil).StartPhoneVerification(context.Background(), "u1")

	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
}

func TestConfirmPhoneVerification(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUser", mock.Anything, "u1").Return(&storage.User{ID: "u1", Phone: "+15550001111"}, nil)
	repo.On("SetPhoneVerified", mock.Anything, "u1", true).Return(nil)

	u, err := newTestUserService(repo, &stubVerifier{approved: true}).
		ConfirmPhoneVerification(context.Background(), "u1", "123456")

	require.NoError(t, err)
	assert.True(t, u.PhoneVerified)
	repo.AssertExpectations(t)
}

func TestConfirmPhoneVerification_WrongCode(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUser", mock.Anything, "u1").Return(&storage.User{ID: "u1", Phone: "+15550001111"}, nil)

	_, err := newTestUserService(repo, &stubVerifier{approved: true}).
		ConfirmPhoneVerification(context.Background(), "u1", "000000")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "code", ve.Field)
	repo.AssertNotCalled(t, "SetPhoneVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPhoneVerification_ProviderError(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUser", mock.Anything, "u1").Return(&storage.User{ID: "u1", Phone: "+15550001111"}, nil)

	_, err := newTestUserService(repo, &stubVerifier{err: errors.New("twilio down")}).
		ConfirmPhoneVerification(context.Background(), "u1", "123456")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "twilio down")
}

func TestConfirmPhoneVerification_UserVanished(t *testing.T) {
	repo := new(mocks.MockUserStore)
	repo.On("GetUser", mock.Anything, "u1").Return(&storage.User{ID: "u1", Phone: "+15550001111"}, nil)
	repo.On("SetPhoneVerified", mock.Anything, "u1", true).Return(fmt.Errorf("user %q: %w", "u1", sql.ErrNoRows))

	_, err := newTestUserService(repo, &stubVerifier{approved: true}).
		ConfirmPhoneVerification(context.Background(), "u1", "123456")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestConfirmPhoneVerification_EmptyCode(t *testing.T) {
	_, err := newTestUserService(new(mocks.MockUserStore), &stubVerifier{}).
		ConfirmPhoneVerification(context.Background(), "u1", " ")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
