package api

import (
	"encoding/json"
	"net/http"
)

// handleListNotificationLog returns recent notification delivery log entries.
// Accepts an optional ?limit=N query parameter (default 50).
func (s *Server) handleListNotificationLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.notificationSvc.ListLog(r.Context(), parseLimit(r))
	if err != nil {
		s.httpErr(w, err, "list notification log")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.notificationSvc.Rules())
}

// handleTestNotification sends a test email to the address in the body.
func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	if err := s.notificationSvc.SendTestEmail(r.Context(), req.To); err != nil {
		s.httpErr(w, err, "send test email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
