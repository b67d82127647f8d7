package handlers

import (
	"net/http"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/permissions"
)

type PermissionsHandler struct {
	Service *family.Service
}

// ListDefinedPermissions serves the statically defined permission groups and their permissions.
func (h *PermissionsHandler) ListDefinedPermissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, permissions.DefinedPermissionGroups)
}

// ListMyPermissions serves the capability keys the current actor holds.
func (h *PermissionsHandler) ListMyPermissions(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r.Context())
	held := []string{}
	for _, key := range permissions.GetAllPermissionKeys() {
		if h.Service.Can(r.Context(), actor, key) {
			held = append(held, key)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"permissions": held})
}
