package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/service"
)

// UserHandler is the admin's user management API.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleList returns all users, or only residents with ?role=resident.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if model.Role(r.URL.Query().Get("role")) == model.RoleResident {
		writeJSON(w, http.StatusOK, h.users.Residents())
		return
	}
	writeJSON(w, http.StatusOK, h.users.List())
}

// HandleCreate adds a user.
//
// HTTP: POST /api/users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.users.Create(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces a user's details.
//
// HTTP: PUT /api/users/{username}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.users.Update(r.Context(), chi.URLParam(r, "username"), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a user and their flat's payments and issues.
//
// HTTP: DELETE /api/users/{username}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
