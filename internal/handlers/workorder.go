package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/crucial707/opificio-cmms/internal/labor"
	"github.com/crucial707/opificio-cmms/internal/middleware"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/crucial707/opificio-cmms/internal/repo"
	"github.com/go-chi/chi/v5"
)

// WorkOrderHandler handles work order CRUD and status transitions.
type WorkOrderHandler struct {
	Repo  *repo.WorkOrderRepo
	Timer *labor.Timer
	Audit *repo.AuditRepo
}

type workOrderInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssetID     int    `json:"asset_id"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	DueDate     string `json:"due_date"` // RFC 3339, optional
}

// ListWorkOrders returns paginated work orders (query: limit, offset, status, asset_id).
func (h *WorkOrderHandler) ListWorkOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var f repo.WorkOrderFilter
	if s := r.URL.Query().Get("status"); s != "" {
		if !models.ValidStatus(s) {
			JSONError(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		f.Status = s
	}
	if a := r.URL.Query().Get("asset_id"); a != "" {
		n, err := strconv.Atoi(a)
		if err != nil || n <= 0 {
			JSONError(w, "invalid asset_id filter", http.StatusBadRequest)
			return
		}
		f.AssetID = n
	}

	list, err := h.Repo.List(r.Context(), f, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), f)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list, "total": total})
}

// GetWorkOrder returns one work order by id.
func (h *WorkOrderHandler) GetWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid work order id", http.StatusBadRequest)
		return
	}

	wo, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if wo == nil {
		JSONError(w, "work order not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, wo)
}

// CreateWorkOrder creates a new work order. Viewers submit requests that enter
// PENDING_APPROVAL; technicians and admins create OPEN orders directly.
func (h *WorkOrderHandler) CreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var input workOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if input.Title == "" {
		fields["title"] = "required"
	}
	if input.AssetID <= 0 {
		fields["asset_id"] = "required"
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		fields["priority"] = "must be LOW, MEDIUM or HIGH"
	}
	var dueDate *time.Time
	if input.DueDate != "" {
		t, err := time.Parse(time.RFC3339, input.DueDate)
		if err != nil {
			fields["due_date"] = "must be RFC 3339"
		} else {
			dueDate = &t
		}
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	status := models.StatusOpen
	if middleware.Role(r.Context()) == models.RoleViewer {
		status = models.StatusPendingApproval
	}

	wo, err := h.Repo.Create(r.Context(), models.WorkOrder{
		Title:       input.Title,
		Description: input.Description,
		AssetID:     input.AssetID,
		Priority:    priority,
		Category:    input.Category,
		Status:      status,
		DueDate:     dueDate,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "create", wo.ID, wo.Title)
	writeJSON(w, http.StatusCreated, wo)
}

// UpdateWorkOrder updates title, description, priority, category and due date.
func (h *WorkOrderHandler) UpdateWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid work order id", http.StatusBadRequest)
		return
	}

	var input workOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		JSONValidationError(w, "validation failed", map[string]string{"title": "required"}, http.StatusBadRequest)
		return
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		JSONValidationError(w, "validation failed", map[string]string{"priority": "must be LOW, MEDIUM or HIGH"}, http.StatusBadRequest)
		return
	}
	var dueDate *time.Time
	if input.DueDate != "" {
		t, err := time.Parse(time.RFC3339, input.DueDate)
		if err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"due_date": "must be RFC 3339"}, http.StatusBadRequest)
			return
		}
		dueDate = &t
	}

	if err := h.Repo.Update(r.Context(), id, models.WorkOrder{
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Category:    input.Category,
		DueDate:     dueDate,
	}); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "update", id, input.Title)
	wo, _ := h.Repo.GetByID(r.Context(), id)
	writeJSON(w, http.StatusOK, wo)
}

// TransitionStatus moves a work order to a new status. Body: {"status": "IN_PROGRESS"}.
// Transitioning to COMPLETED goes through the labor timer so running sessions
// are force-closed.
func (h *WorkOrderHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid work order id", http.StatusBadRequest)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || !models.ValidStatus(input.Status) {
		JSONError(w, "invalid status", http.StatusBadRequest)
		return
	}

	wo, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if wo == nil {
		JSONError(w, "work order not found", http.StatusNotFound)
		return
	}

	if input.Status == models.StatusCompleted {
		closed, err := h.Timer.Complete(r.Context(), id)
		if err == labor.ErrNotCompletable {
			JSONError(w, fmt.Sprintf("cannot move from %s to %s", wo.Status, input.Status), http.StatusConflict)
			return
		}
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		h.audit(r, "status_change", id, wo.Status+" -> "+input.Status)
		wo, _ = h.Repo.GetByID(r.Context(), id)
		writeJSON(w, http.StatusOK, map[string]interface{}{"work_order": wo, "sessions_closed": closed})
		return
	}

	if !models.CanTransition(wo.Status, input.Status) {
		JSONError(w, fmt.Sprintf("cannot move from %s to %s", wo.Status, input.Status), http.StatusConflict)
		return
	}

	if err := h.Repo.UpdateStatus(r.Context(), id, input.Status); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "status_change", id, wo.Status+" -> "+input.Status)
	wo, _ = h.Repo.GetByID(r.Context(), id)
	writeJSON(w, http.StatusOK, wo)
}

func (h *WorkOrderHandler) audit(r *http.Request, action string, id int, details string) {
	if h.Audit == nil {
		return
	}
	_ = h.Audit.Log(r.Context(), middleware.UserID(r.Context()), action, "work_order", id, details)
}
