package handlers

import (
	"net/http"
	"strconv"

	"github.com/camden-git/familytreebackend/family"
)

type AuditHandler struct {
	Service *family.Service
}

// ListAudit serves GET /api/audit?limit=
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_query", "limit must be an integer")
			return
		}
		limit = n
	}

	entries, err := h.Service.ListAudit(r.Context(), UserFromContext(r.Context()), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
