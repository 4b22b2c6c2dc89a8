package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crucial707/opificio-cmms/internal/assistant"
)

// AssistantHandler answers maintenance questions from the rule-based responder.
type AssistantHandler struct {
	Responder *assistant.Responder
}

// Ask returns the canned reply for a free-text question. Body: {"message": "..."}.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		JSONValidationError(w, "validation failed", map[string]string{"message": "required"}, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.Responder.Respond(input.Message))
}
