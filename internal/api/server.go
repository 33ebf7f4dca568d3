package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/service"
)

const (
	errInvalidJSONBody = "invalid JSON body"
	defaultListLimit   = 50
	maxListLimit       = 500
)

// Server holds all dependencies for the REST API handlers.
type Server struct {
	orderSvc        service.OrderService
	userSvc         service.UserService
	notificationSvc service.NotificationService
	logger          *slog.Logger
}

// New creates a new API Server backed by the provided services.
func New(
	orderSvc service.OrderService,
	userSvc service.UserService,
	notificationSvc service.NotificationService,
	logger *slog.Logger,
) *Server {
	return &Server{
		orderSvc:        orderSvc,
		userSvc:         userSvc,
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/version", s.handleVersion)

	// Customers
	r.Post("/users", s.handleRegisterUser)
	r.Get("/users", s.handleFindUser)
	r.Get("/users/{id}", s.handleGetUser)
	r.Post("/users/{id}/phone/verify", s.handleStartPhoneVerification)
	r.Post("/users/{id}/phone/confirm", s.handleConfirmPhoneVerification)

	// Orders
	r.Post("/orders", s.handleCreateOrder)
	r.Get("/orders", s.handleListOrders)
	r.Get("/orders/{id}", s.handleGetOrder)
	r.Put("/orders/{id}/status", s.handleChangeStatus)
	r.Get("/orders/{id}/notifications", s.handleListOrderNotifications)

	// Notifications
	r.Get("/notifications/log", s.handleListNotificationLog)
	r.Get("/notifications/rules", s.handleListRules)
	r.Post("/notifications/test", s.handleTestNotification)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// httpErr maps service errors to HTTP status codes. Unexpected errors are
// logged and reported without detail.
func (s *Server) httpErr(w http.ResponseWriter, err error, op string) {
	var (
		nfe *service.NotFoundError
		ve  *service.ValidationError
		ce  *service.ConflictError
		ite *service.InvalidTransitionError
		ue  *service.UnavailableError
		se  *notification.SendError
	)
	switch {
	case errors.As(err, &nfe):
		writeError(w, http.StatusNotFound, nfe.Error())
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ite):
		writeError(w, http.StatusConflict, ite.Error())
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, ce.Error())
	case errors.As(err, &ue):
		writeError(w, http.StatusServiceUnavailable, ue.Error())
	case errors.As(err, &se):
		writeError(w, http.StatusBadGateway, se.Error())
	default:
		s.logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

// parseLimit reads ?limit=N, clamped to (0, maxListLimit].
func parseLimit(r *http.Request) int {
	limit := defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}
	return limit
}

func orderIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
