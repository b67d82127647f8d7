package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-chi/chi/v5"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/models"
)

type UsersHandler struct {
	Service *family.Service
}

var errInvalidUserID = errors.New("must be a positive integer")

func pathUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		writeValidationError(w, validation.Errors{"id": errInvalidUserID})
		return 0, false
	}
	return uint(id), true
}

// ListUserPermissions serves GET /api/users/{id}/permissions
func (h *UsersHandler) ListUserPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	perms, err := h.Service.ListUserPermissions(r.Context(), UserFromContext(r.Context()), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

// GrantPermission serves PUT /api/users/{id}/permissions/{permission}
func (h *UsersHandler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, h.Service.GrantPermission)
}

// RevokePermission serves DELETE /api/users/{id}/permissions/{permission}
func (h *UsersHandler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	h.changeGrant(w, r, h.Service.RevokePermission)
}

type grantFunc func(ctx context.Context, actor *models.User, userID uint, name string) error

// changeGrant applies change and responds with the user's permissions.
func (h *UsersHandler) changeGrant(w http.ResponseWriter, r *http.Request, change grantFunc) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	actor := UserFromContext(r.Context())
	if err := change(r.Context(), actor, userID, chi.URLParam(r, "permission")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	perms, err := h.Service.ListUserPermissions(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}
