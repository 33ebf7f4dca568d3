package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

// e164 matches phone numbers in E.164 format, the only format Twilio accepts.
var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// RegisterUserRequest is the input of UserService.Register.
type RegisterUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UserService manages customers and the verification of their phone numbers.
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*storage.User, error)
	Get(ctx context.Context, id string) (*storage.User, error)
	GetByPhone(ctx context.Context, phone string) (*storage.User, error)
	// StartPhoneVerification texts a one-time code to the user's phone.
	StartPhoneVerification(ctx context.Context, id string) error
	// ConfirmPhoneVerification checks code and marks the phone verified.
	ConfirmPhoneVerification(ctx context.Context, id, code string) (*storage.User, error)
}

type userService struct {
	repo     storage.UserStore
	verifier notification.PhoneVerifier
	logger   *slog.Logger
}

// NewUserService returns a new UserService. A nil verifier disables phone
// verification.
func NewUserService(repo storage.UserStore, verifier notification.PhoneVerifier, logger *slog.Logger) UserService {
	return &userService{repo: repo, verifier: verifier, logger: logger}
}

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*storage.User, error) {
	u := &storage.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	}
	if err := validateUser(u); err != nil {
		return nil, err
	}

	if err := s.repo.AddUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicatePhone) {
			return nil, &ConflictError{Resource: "user with phone", ID: u.Phone}
		}
		return nil, fmt.Errorf("adding user: %w", err)
	}

	s.logger.Info("user registered", "id", u.ID)
	return u, nil
}

func validateUser(u *storage.User) error {
	if u.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if u.Email == "" && u.Phone == "" {
		return &ValidationError{Message: "an email address or a phone number is required"}
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return &ValidationError{Field: "email", Message: "invalid email address"}
		}
	}
	if u.Phone != "" && !e164.MatchString(u.Phone) {
		return &ValidationError{Field: "phone", Message: "phone must be in E.164 format, e.g. +15551234567"}
	}
	return nil
}

func (s *userService) Get(ctx context.Context, id string) (*storage.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	if u == nil {
		return nil, &NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (s *userService) GetByPhone(ctx context.Context, phone string) (*storage.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, &ValidationError{Field: "phone", Message: "phone is required"}
	}
	u, err := s.repo.GetUserByPhoneNumber(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("looking up user by phone: %w", err)
	}
	if u == nil {
		return nil, &NotFoundError{Resource: "user with phone", ID: phone}
	}
	return u, nil
}

func (s *userService) StartPhoneVerification(ctx context.Context, id string) error {
	if s.verifier == nil {
		return &UnavailableError{Feature: "phone verification"}
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Phone == "" {
		return &ValidationError{Field: "phone", Message: "user has no phone number"}
	}
	if err := s.verifier.StartVerification(ctx, u.Phone); err != nil {
		return fmt.Errorf("starting phone verification: %w", err)
	}
	s.logger.Info("phone verification started", "user_id", id)
	return nil
}

func (s *userService) ConfirmPhoneVerification(ctx context.Context, id, code string) (*storage.User, error) {
	if s.verifier == nil {
		return nil, &UnavailableError{Feature: "phone verification"}
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &ValidationError{Field: "code", Message: "code is required"}
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Phone == "" {
		return nil, &ValidationError{Field: "phone", Message: "user has no phone number"}
	}

	ok, err := s.verifier.CheckVerification(ctx, u.Phone, code)
	if err != nil {
		return nil, fmt.Errorf("checking phone verification: %w", err)
	}
	if !ok {
		return nil, &ValidationError{Field: "code", Message: "verification code is invalid or expired"}
	}

	if err := s.repo.SetPhoneVerified(ctx, id, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "user", ID: id}
		}
		return nil, fmt.Errorf("marking phone verified: %w", err)
	}
	u.PhoneVerified = true
	s.logger.Info("phone verified", "user_id", id)
	return u, nil
}
