package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crucial707/opificio-cmms/internal/middleware"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/crucial707/opificio-cmms/internal/repo"
	"github.com/go-chi/chi/v5"
)

// PartHandler handles spare parts inventory.
type PartHandler struct {
	Repo  *repo.PartRepo
	Audit *repo.AuditRepo
}

type partInput struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Location    string  `json:"location"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"min_quantity"`
	UnitCost    float64 `json:"unit_cost"`
}

// partView adds the low-stock flag to a part for list/detail output.
type partView struct {
	models.Part
	LowStock bool `json:"low_stock"`
}

// ListParts returns paginated parts with low-stock flags.
func (h *PartHandler) ListParts(w http.ResponseWriter, r *http.Request) {
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

	items := make([]partView, 0, len(list))
	for i := range list {
		items = append(items, partView{Part: list[i], LowStock: list[i].LowStock()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

// GetPart returns one part by id.
func (h *PartHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid part id", http.StatusBadRequest)
		return
	}

	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if p == nil {
		JSONError(w, "part not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, partView{Part: *p, LowStock: p.LowStock()})
}

// CreatePart creates a new part.
func (h *PartHandler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var input partInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if input.Name == "" {
		fields["name"] = "required"
	}
	if input.Code == "" {
		fields["code"] = "required"
	}
	if input.Quantity < 0 {
		fields["quantity"] = "must not be negative"
	}
	if input.MinQuantity < 0 {
		fields["min_quantity"] = "must not be negative"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	p, err := h.Repo.Create(r.Context(), models.Part{
		Name:        input.Name,
		Code:        input.Code,
		Location:    input.Location,
		Quantity:    input.Quantity,
		MinQuantity: input.MinQuantity,
		UnitCost:    input.UnitCost,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "create", p.ID, p.Name)
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePart updates a part's metadata (not quantity; use AdjustStock).
func (h *PartHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid part id", http.StatusBadRequest)
		return
	}

	var input partInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Name == "" || input.Code == "" {
		JSONValidationError(w, "validation failed", map[string]string{"name": "required", "code": "required"}, http.StatusBadRequest)
		return
	}

	if err := h.Repo.Update(r.Context(), id, models.Part{
		Name:        input.Name,
		Code:        input.Code,
		Location:    input.Location,
		MinQuantity: input.MinQuantity,
		UnitCost:    input.UnitCost,
	}); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "update", id, input.Name)
	p, _ := h.Repo.GetByID(r.Context(), id)
	writeJSON(w, http.StatusOK, p)
}

// DeletePart deletes a part.
func (h *PartHandler) DeletePart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid part id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "delete", id, "")
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock applies a signed stock delta. Body: {"delta": -2}.
func (h *PartHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid part id", http.StatusBadRequest)
		return
	}

	var input struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Delta == 0 {
		JSONError(w, "invalid JSON or zero delta", http.StatusBadRequest)
		return
	}

	qty, err := h.Repo.AdjustQuantity(r.Context(), id, input.Delta)
	if err == repo.ErrInsufficientStock {
		JSONError(w, "insufficient stock", http.StatusConflict)
		return
	}
	if err == sql.ErrNoRows {
		JSONError(w, "part not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "update", id, "stock "+strconv.Itoa(input.Delta))
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "quantity": qty})
}

func (h *PartHandler) audit(r *http.Request, action string, id int, details string) {
	if h.Audit == nil {
		return
	}
	_ = h.Audit.Log(r.Context(), middleware.UserID(r.Context()), action, "part", id, details)
}
