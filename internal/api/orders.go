package api

import (
	"encoding/json"
	"net/http"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/service"
)

const errInvalidOrderID = "invalid order id"

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	o, err := s.orderSvc.CreateOrder(r.Context(), req)
	if err != nil {
		s.httpErr(w, err, "create order")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// handleListOrders accepts optional ?user_id= and ?limit= query parameters.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orderSvc.ListOrders(r.Context(), r.URL.Query().Get("user_id"), parseLimit(r))
	if err != nil {
		s.httpErr(w, err, "list orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, errInvalidOrderID)
		return
	}

	o, err := s.orderSvc.GetOrder(r.Context(), id)
	if err != nil {
		s.httpErr(w, err, "get order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// handleChangeStatus moves an order to a new status. The response carries the
// notification results; failed notifications still return 200 because the
// status change itself succeeded.
func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, errInvalidOrderID)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	change, err := s.orderSvc.ChangeStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		s.httpErr(w, err, "change order status")
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func (s *Server) handleListOrderNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, errInvalidOrderID)
		return
	}

	entries, err := s.notificationSvc.ListOrderLog(r.Context(), id)
	if err != nil {
		s.httpErr(w, err, "list order notifications")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
