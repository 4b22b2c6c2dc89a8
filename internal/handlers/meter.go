package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/crucial707/opificio-cmms/internal/repo"
	"github.com/go-chi/chi/v5"
)

// MeterHandler handles meter readings for assets.
type MeterHandler struct {
	Repo *repo.MeterRepo
}

// RecordReading appends a reading for an asset.
// Body: {"meter": "kwh", "value": 1234.5, "reading_at": "..."} (reading_at defaults to now).
func (h *MeterHandler) RecordReading(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	var input struct {
		Meter     string  `json:"meter"`
		Value     float64 `json:"value"`
		ReadingAt string  `json:"reading_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Meter == "" {
		JSONValidationError(w, "validation failed", map[string]string{"meter": "required"}, http.StatusBadRequest)
		return
	}
	readingAt := time.Now()
	if input.ReadingAt != "" {
		t, err := time.Parse(time.RFC3339, input.ReadingAt)
		if err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"reading_at": "must be RFC 3339"}, http.StatusBadRequest)
			return
		}
		readingAt = t
	}

	m, err := h.Repo.Insert(r.Context(), assetID, input.Meter, input.Value, readingAt)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// ListReadings returns readings for an asset, newest first (query: meter, limit).
func (h *MeterHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	list, err := h.Repo.ListByAsset(r.Context(), assetID, r.URL.Query().Get("meter"), limit)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list})
}

// LatestReadings returns the most recent reading per meter for an asset.
func (h *MeterHandler) LatestReadings(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	list, err := h.Repo.Latest(r.Context(), assetID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list})
}
