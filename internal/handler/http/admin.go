package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aldermoor/storefront/internal/service"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// AdminHandler handles HTTP requests for admin-only user management.
type AdminHandler struct {
	users *service.UserService
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// AdminUpdateUserRequest is the JSON request body for updating any account.
type AdminUpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"is_active"`
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	users, total, err := h.users.ListUsers(r.Context(), params)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: pagination.NewResult(users, total, params)})
}

// GetUser handles GET /api/v1/admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "user id is required")
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// UpdateUser handles PUT /api/v1/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "user id is required")
		return
	}

	var req AdminUpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.AdminUpdateUser(r.Context(), id, service.AdminUpdateUserInput{
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "user id is required")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"id": id, "status": "deleted"},
	})
}
