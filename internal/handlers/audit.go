package handlers

import (
	"net/http"

	"github.com/crucial707/opificio-cmms/internal/repo"
)

// AuditHandler exposes the audit log (admin only; gated at the router).
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns recent audit entries, newest first.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}
