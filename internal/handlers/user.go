package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crucial707/opificio-cmms/internal/middleware"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/crucial707/opificio-cmms/internal/repo"
	"github.com/go-chi/chi/v5"
)

// ==========================
// User Handler (admin only; gated at the router)
// ==========================
type UserHandler struct {
	Repo  *repo.UserRepo
	Audit *repo.AuditRepo
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list})
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	u, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if u == nil {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// ==========================
// Update Role
// ==========================
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || !models.ValidRole(input.Role) {
		JSONError(w, "invalid role", http.StatusBadRequest)
		return
	}

	if err := h.Repo.UpdateRole(r.Context(), id, input.Role); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.Audit != nil {
		_ = h.Audit.Log(r.Context(), middleware.UserID(r.Context()), "update", "user", id, "role "+input.Role)
	}
	u, _ := h.Repo.GetByID(r.Context(), id)
	writeJSON(w, http.StatusOK, u)
}

// ==========================
// Delete User
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if id == middleware.UserID(r.Context()) {
		JSONError(w, "cannot delete your own account", http.StatusConflict)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.Audit != nil {
		_ = h.Audit.Log(r.Context(), middleware.UserID(r.Context()), "delete", "user", id, "")
	}
	w.WriteHeader(http.StatusNoContent)
}
