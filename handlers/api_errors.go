package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"github.com/camden-git/familytreebackend/family"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	writeJSON(w, httpStatus, APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	})
}

// writeValidationError lists one error per invalid field.
func writeValidationError(w http.ResponseWriter, err error) {
	var fields validation.Errors
	if !errors.As(err, &fields) || len(fields) == 0 {
		WriteAPIError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	status := strconv.Itoa(http.StatusBadRequest)
	resp := APIErrorResponse{Errors: make([]APIErrorDetail, 0, len(names))}
	for _, name := range names {
		resp.Errors = append(resp.Errors, APIErrorDetail{
			Code:   "validation_failed",
			Status: status,
			Detail: fields[name].Error(),
			Field:  name,
		})
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// writeServiceError maps family service errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, family.ErrValidation):
		writeValidationError(w, err)
	case errors.Is(err, family.ErrPermissionDenied):
		if UserFromContext(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="familytree"`)
			WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}
		WriteAPIError(w, http.StatusForbidden, "forbidden", "you are not allowed to do this")
	case errors.Is(err, family.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, "not_found", "person not found")
	case errors.Is(err, family.ErrUserNotFound):
		WriteAPIError(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.Is(err, family.ErrDuplicateCode):
		WriteAPIError(w, http.StatusConflict, "duplicate_code", "a person with this code already exists")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}
