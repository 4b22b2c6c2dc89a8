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

// AssetHandler handles asset CRUD.
type AssetHandler struct {
	Repo  *repo.AssetRepo
	Audit *repo.AuditRepo
}

type assetInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	InstallDate string `json:"install_date"` // RFC 3339, optional
	Notes       string `json:"notes"`
}

func (in *assetInput) toModel(w http.ResponseWriter) (*models.Asset, bool) {
	fields := make(map[string]string)
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.Code == "" {
		fields["code"] = "required"
	}
	status := in.Status
	if status == "" {
		status = models.AssetOperational
	}
	switch status {
	case models.AssetOperational, models.AssetDown, models.AssetMaintenance:
	default:
		fields["status"] = "must be operational, down or maintenance"
	}
	var installDate *time.Time
	if in.InstallDate != "" {
		t, err := time.Parse(time.RFC3339, in.InstallDate)
		if err != nil {
			fields["install_date"] = "must be RFC 3339"
		} else {
			installDate = &t
		}
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return nil, false
	}
	return &models.Asset{
		Name:        in.Name,
		Code:        in.Code,
		Location:    in.Location,
		Category:    in.Category,
		Status:      status,
		InstallDate: installDate,
		Notes:       in.Notes,
	}, true
}

// ListAssets returns paginated assets (query: limit, offset).
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
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

// GetAsset returns one asset by id.
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	a, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if a == nil {
		JSONError(w, "asset not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// CreateAsset creates a new asset.
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var input assetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	a, ok := input.toModel(w)
	if !ok {
		return
	}

	created, err := h.Repo.Create(r.Context(), *a)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "create", created.ID, created.Name)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateAsset updates an asset.
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	var input assetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	a, ok := input.toModel(w)
	if !ok {
		return
	}

	if err := h.Repo.Update(r.Context(), id, *a); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "update", id, a.Name)
	updated, _ := h.Repo.GetByID(r.Context(), id)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteAsset deletes an asset.
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.audit(r, "delete", id, "")
	w.WriteHeader(http.StatusNoContent)
}

// audit records the action best-effort; a failed audit write never fails the request.
func (h *AssetHandler) audit(r *http.Request, action string, id int, details string) {
	if h.Audit == nil {
		return
	}
	_ = h.Audit.Log(r.Context(), middleware.UserID(r.Context()), action, "asset", id, details)
}
