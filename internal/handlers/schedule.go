package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/crucial707/opificio-cmms/internal/middleware"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/crucial707/opificio-cmms/internal/repo"
	"github.com/go-chi/chi/v5"
)

// ScheduleHandler handles preventive schedule CRUD.
type ScheduleHandler struct {
	Repo  *repo.ScheduleRepo
	Audit *repo.AuditRepo
}

type scheduleInput struct {
	AssetID       int    `json:"asset_id"`
	TaskTitle     string `json:"task_title"`
	Description   string `json:"description"`
	FrequencyDays int    `json:"frequency_days"`
	NextDueDate   string `json:"next_due_date"` // RFC 3339; defaults to now + frequency on create
}

// ListSchedules returns paginated schedules (query: limit, offset).
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list, "total": total})
}

// GetSchedule returns one schedule by id.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if s == nil {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// CreateSchedule creates a new schedule. Body: {"asset_id": 1, "task_title": "...", "frequency_days": 30, "next_due_date": "..."}.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var input scheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if input.AssetID <= 0 {
		fields["asset_id"] = "required"
	}
	if input.TaskTitle == "" {
		fields["task_title"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	// Invalid cadence falls back to the safe default instead of being stored.
	freq := input.FrequencyDays
	if freq <= 0 {
		freq = models.DefaultFrequencyDays
	}

	nextDue := time.Now().AddDate(0, 0, freq)
	if input.NextDueDate != "" {
		t, err := time.Parse(time.RFC3339, input.NextDueDate)
		if err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"next_due_date": "must be RFC 3339"}, http.StatusBadRequest)
			return
		}
		nextDue = t
	}

	s, err := h.Repo.Create(r.Context(), input.AssetID, input.TaskTitle, input.Description, freq, nextDue)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "create", s.ID, s.TaskTitle)
	writeJSON(w, http.StatusCreated, s)
}

// UpdateSchedule updates a schedule's task, description, frequency and next due date.
func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	var input scheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.TaskTitle == "" {
		JSONValidationError(w, "validation failed", map[string]string{"task_title": "required"}, http.StatusBadRequest)
		return
	}
	if input.NextDueDate == "" {
		JSONValidationError(w, "validation failed", map[string]string{"next_due_date": "required"}, http.StatusBadRequest)
		return
	}
	nextDue, err := time.Parse(time.RFC3339, input.NextDueDate)
	if err != nil {
		JSONValidationError(w, "validation failed", map[string]string{"next_due_date": "must be RFC 3339"}, http.StatusBadRequest)
		return
	}

	freq := input.FrequencyDays
	if freq <= 0 {
		freq = models.DefaultFrequencyDays
	}

	if err := h.Repo.Update(r.Context(), id, input.TaskTitle, input.Description, freq, nextDue); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "update", id, input.TaskTitle)
	s, _ := h.Repo.GetByID(r.Context(), id)
	writeJSON(w, http.StatusOK, s)
}

// DeleteSchedule deletes a schedule. Generated work orders are kept.
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "delete", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) audit(r *http.Request, action string, id int, details string) {
	if h.Audit == nil {
		return
	}
	_ = h.Audit.Log(r.Context(), middleware.UserID(r.Context()), action, "schedule", id, details)
}
