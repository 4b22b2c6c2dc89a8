package handlers

import (
	"net/http"

	"github.com/crucial707/opificio-cmms/internal/scan"
)

// ScanHandler triggers the preventive maintenance scan over HTTP. The same
// engine runs from the background cron scheduler; this endpoint exists for
// manual runs and external cron-style invocation (GET or POST).
type ScanHandler struct {
	Engine *scan.Engine

	// BatchLimit bounds schedules processed per request; 0 means the engine default.
	BatchLimit int
}

// scanResponse is the wire shape for scan runs.
type scanResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message,omitempty"`
}

// RunScan executes one scan batch and reports generated count and per-schedule
// failures. A schedule failure does not fail the request; only being unable to
// query due schedules at all does.
func (h *ScanHandler) RunScan(w http.ResponseWriter, r *http.Request) {
	res, err := h.Engine.Run(r.Context(), h.BatchLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   ErrMessageInternal,
		})
		return
	}

	out := scanResponse{Success: true, Count: res.Generated, Errors: res.Errors}
	if res.Generated == 0 && len(res.Errors) == 0 {
		out.Message = "no schedules due"
	}
	writeJSON(w, http.StatusOK, out)
}
