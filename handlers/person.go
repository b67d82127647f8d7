package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-chi/chi/v5"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/models"
)

type PersonHandler struct {
	Service *family.Service
}

var codeRules = []validation.Rule{
	validation.Required.Error("code is required"),
	validation.Match(models.CodePattern).Error("code must look like A0-000-001"),
}

// pathCode reads and checks the {code} URL parameter.
func pathCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if err := validation.Validate(code, codeRules...); err != nil {
		writeValidationError(w, validation.Errors{"code": err})
		return "", false
	}
	return code, true
}

func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req family.CreatePersonInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if err := validation.Validate(req.Code, codeRules...); err != nil {
		writeValidationError(w, validation.Errors{"code": err})
		return
	}

	code, err := ph.Service.CreatePerson(r.Context(), UserFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	details, err := ph.Service.GetPersonDetails(r.Context(), code)
	if err != nil {
		writeJSON(w, http.StatusCreated, map[string]string{"code": code})
		return
	}
	writeJSON(w, http.StatusCreated, details)
}

// ListPeople serves GET /api/people?page=&page_size=&q=&min_level=&sort=
func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := family.ListQuery{Search: query.Get("q"), Sort: query.Get("sort")}
	for _, param := range []string{"page", "page_size", "min_level"} {
		raw := query.Get(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_query", param+" must be an integer")
			return
		}
		switch param {
		case "page":
			q.Page = n
		case "page_size":
			q.PageSize = n
		case "min_level":
			q.MinLevel = &n
		}
	}

	page, err := ph.Service.ListPersons(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r)
	if !ok {
		return
	}
	details, err := ph.Service.GetPersonDetails(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r)
	if !ok {
		return
	}
	var req family.UpdatePersonInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	if err := ph.Service.UpdatePerson(r.Context(), UserFromContext(r.Context()), code, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	details, err := ph.Service.GetPersonDetails(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r)
	if !ok {
		return
	}
	if err := ph.Service.DeletePerson(r.Context(), UserFromContext(r.Context()), code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
