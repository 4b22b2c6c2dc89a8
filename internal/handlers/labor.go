package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crucial707/opificio-cmms/internal/labor"
	"github.com/crucial707/opificio-cmms/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// LaborHandler exposes the work timer. The acting user comes from the JWT
// claims in the request context; a caller can only drive their own sessions.
type LaborHandler struct {
	Timer *labor.Timer
}

// timerResult is the uniform response shape for timer actions.
type timerResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Session interface{} `json:"session,omitempty"`
}

// StartTimer opens a labor session on the work order for the current user.
func (h *LaborHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid work order id", http.StatusBadRequest)
		return
	}
	userID := middleware.UserID(r.Context())

	s, err := h.Timer.Start(r.Context(), id, userID)
	if err == labor.ErrAlreadyActive {
		writeJSON(w, http.StatusConflict, timerResult{Success: false, Message: err.Error()})
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, timerResult{Success: true, Session: s})
}

// PauseTimer closes the current user's running session. Body: {"note": "..."} (optional).
func (h *LaborHandler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid work order id", http.StatusBadRequest)
		return
	}
	userID := middleware.UserID(r.Context())

	var input struct {
		Note string `json:"note"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&input) // empty body is fine
	}

	s, err := h.Timer.Pause(r.Context(), id, userID, input.Note)
	if err == labor.ErrNoActiveSession {
		writeJSON(w, http.StatusConflict, timerResult{Success: false, Message: err.Error()})
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, timerResult{Success: true, Session: s})
}

// StopTimer closes every running session on the work order and marks it
// COMPLETED.
func (h *LaborHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid work order id", http.StatusBadRequest)
		return
	}

	closed, err := h.Timer.Complete(r.Context(), id)
	if err == sql.ErrNoRows {
		JSONError(w, "work order not found", http.StatusNotFound)
		return
	}
	if err == labor.ErrNotCompletable {
		writeJSON(w, http.StatusConflict, timerResult{Success: false, Message: err.Error()})
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "sessions_closed": closed})
}

// ListSessions returns all sessions and the accumulated time for a work order.
func (h *LaborHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid work order id", http.StatusBadRequest)
		return
	}

	sessions, err := h.Timer.Sessions(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Timer.Total(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions, "total": total})
}
