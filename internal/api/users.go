package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudcitycakeco/cakeorders/internal/service"
)

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	u, err := s.userSvc.Register(r.Context(), req)
	if err != nil {
		s.httpErr(w, err, "register user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.userSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.httpErr(w, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleFindUser looks a user up by ?phone=.
func (s *Server) handleFindUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.userSvc.GetByPhone(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		s.httpErr(w, err, "find user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleStartPhoneVerification(w http.ResponseWriter, r *http.Request) {
	if err := s.userSvc.StartPhoneVerification(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.httpErr(w, err, "start phone verification")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

func (s *Server) handleConfirmPhoneVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	u, err := s.userSvc.ConfirmPhoneVerification(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		s.httpErr(w, err, "confirm phone verification")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
