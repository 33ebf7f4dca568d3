package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

// Event types published by the order service.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Notifier runs the notification rules for a committed transition.
// *notification.Dispatcher implements it.
type Notifier interface {
	Dispatch(ctx context.Context, t order.Transition) []notification.Result
}

// TransitionRecorder observes committed status changes, typically for metrics.
type TransitionRecorder interface {
	RecordTransition(from, to order.Status)
}

// CreateOrderRequest is the input of OrderService.CreateOrder. When Contact is
// nil the owning user's contact details are snapshotted.
type CreateOrderRequest struct {
	UserID      string         `json:"user_id"`
	Description string         `json:"description"`
	Contact     *order.Contact `json:"contact,omitempty"`
}

// StatusChange is the outcome of OrderService.ChangeStatus.
type StatusChange struct {
	Order         *order.Order          `json:"order"`
	From          order.Status          `json:"from"`
	To            order.Status          `json:"to"`
	Notifications []notification.Result `json:"notifications"`
}

// OrderService defines the business logic interface for cake orders.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*order.Order, error)
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	ListOrders(ctx context.Context, userID string, limit int) ([]*order.Order, error)
	// ChangeStatus moves an order to status and dispatches its notifications.
	// Notification failures are reported in the result and never returned as
	// an error: once the status is persisted the change stands.
	ChangeStatus(ctx context.Context, id int64, status order.Status) (*StatusChange, error)
}

// OrderServiceConfig holds the collaborators of the order service. Events and
// Recorder are optional.
type OrderServiceConfig struct {
	Orders   storage.OrderStore
	Users    storage.UserStore
	Workflow *order.Workflow
	Notifier Notifier
	Events   EventPublisher
	Recorder TransitionRecorder
	Logger   *slog.Logger
	// Now overrides the clock.
	Now func() time.Time
}

type orderService struct {
	orders   storage.OrderStore
	users    storage.UserStore
	workflow *order.Workflow
	notifier Notifier
	events   EventPublisher
	recorder TransitionRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService returns a new OrderService.
func NewOrderService(cfg OrderServiceConfig) OrderService {
	s := &orderService{
		orders:   cfg.Orders,
		users:    cfg.Users,
		workflow: cfg.Workflow,
		notifier: cfg.Notifier,
		events:   cfg.Events,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return nil, &ValidationError{Field: "description", Message: "description is required"}
	}
	if req.UserID == "" && req.Contact == nil {
		return nil, &ValidationError{Message: "either user_id or contact is required"}
	}

	var (
		contact order.Contact
		owner   *storage.User
	)
	if req.UserID != "" {
		u, err := s.users.GetUser(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("looking up user: %w", err)
		}
		if u == nil {
			return nil, &NotFoundError{Resource: "user", ID: req.UserID}
		}
		owner = u
		contact = order.Contact{Email: u.Email, Phone: u.Phone, PhoneVerified: u.PhoneVerified}
	}
	if req.Contact != nil {
		contact = *req.Contact
		contact.Email = strings.TrimSpace(contact.Email)
		contact.Phone = strings.TrimSpace(contact.Phone)
		// A phone only counts as verified when it is the owner's verified phone.
		contact.PhoneVerified = owner != nil && owner.PhoneVerified && owner.Phone == contact.Phone
	}
	if err := validateContact(contact); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &order.Order{
		UserID:      req.UserID,
		Description: req.Description,
		Status:      s.workflow.Initial(),
		Contact:     contact,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	s.logger.Info("order created", "id", o.ID, "user_id", o.UserID, "status", o.Status)
	s.publish(EventOrderCreated, map[string]string{
		"order_id": strconv.FormatInt(o.ID, 10),
		"user_id":  o.UserID,
		"status":   string(o.Status),
	})
	return o, nil
}

func validateContact(c order.Contact) error {
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return &ValidationError{Field: "contact.email", Message: "invalid email address"}
		}
	}
	if c.Phone != "" && !e164.MatchString(c.Phone) {
		return &ValidationError{Field: "contact.phone", Message: "phone must be in E.164 format, e.g. +15551234567"}
	}
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	if o == nil {
		return nil, &NotFoundError{Resource: "order", ID: strconv.FormatInt(id, 10)}
	}
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string, limit int) ([]*order.Order, error) {
	orders, err := s.orders.ListOrders(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ChangeStatus(ctx context.Context, id int64, status order.Status) (*StatusChange, error) {
	to := order.ParseStatus(string(status))
	if !s.workflow.Known(to) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status

	// Nothing changes and nothing is dispatched.
	if from == to {
		return &StatusChange{Order: o, From: from, To: to, Notifications: []notification.Result{}}, nil
	}

	if !s.workflow.Allowed(from, to) {
		return nil, &InvalidTransitionError{OrderID: id, From: from, To: to}
	}

	at := s.now().UTC()
	ok, err := s.orders.UpdateStatus(ctx, id, from, to, at)
	if err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	if !ok {
		return nil, &ConflictError{
			Resource: "order",
			ID:       strconv.FormatInt(id, 10),
			Reason:   "status changed concurrently",
		}
	}

	o.UpdatedAt = at
	t := order.NewTransition(*o, from, to, at)
	updated := t.Order

	s.logger.Info("order status changed", "id", id, "from", from, "to", to)
	if s.recorder != nil {
		s.recorder.RecordTransition(from, to)
	}

	results := s.notifier.Dispatch(ctx, t)
	s.logger.Info("order notifications dispatched", "id", id, "to", to, "results", len(results))

	s.publish(EventOrderStatusChanged, map[string]string{
		"order_id": strconv.FormatInt(id, 10),
		"from":     string(from),
		"to":       string(to),
	})

	return &StatusChange{Order: &updated, From: from, To: to, Notifications: results}, nil
}

func (s *orderService) publish(eventType string, payload map[string]string) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, payload)
}
