package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/database/dbtest"
	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/handlers"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/permissions"
	"github.com/camden-git/familytreebackend/repository"
	"github.com/camden-git/familytreebackend/search"
)

type apiFixture struct {
	router http.Handler
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	db := dbtest.Open(t)
	require.NoError(t, database.SeedPermissions(db, permissions.SeedRows()))
	dbtest.CreateUser(t, db, "admin", models.RoleAdmin)
	dbtest.CreateUser(t, db, "guest", models.RoleUser)

	svc := family.NewService(db,
		permissions.NewEvaluator(repository.NewGormPermissionRepository(db)),
		search.NewSynchronizer(true), nil,
		family.Options{DisplayMaxNames: 7, PageSize: 24, MaxPageSize: 100},
	)
	return &apiFixture{router: handlers.NewRouter(handlers.RouterDeps{
		Service:        svc,
		Users:          repository.NewGormUserRepository(db),
		AllowedOrigins: []string{"http://localhost:5173"},
	})}
}

// do sends a request; user "" means anonymous. Passwords follow dbtest.CreateUser.
func (f *apiFixture) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.SetBasicAuth(user, "secret-"+user)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) handlers.APIErrorResponse {
	t.Helper()
	var resp handlers.APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Errors)
	return resp
}

func TestCreatePersonStatusMapping(t *testing.T) {
	f := newAPI(t)
	body := `{"code":"A0-000-001","name":"Ahmed","info":{"gender":"male"}}`

	rec := f.do(t, http.MethodPost, "/api/people", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/people", strings.NewReader(body))
	req.SetBasicAuth("admin", "wrong")
	wrong := httptest.NewRecorder()
	f.router.ServeHTTP(wrong, req)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, "invalid_credentials", decodeErrors(t, wrong).Errors[0].Code)

	rec = f.do(t, http.MethodPost, "/api/people", "guest", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/people", "admin", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var details family.PersonDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "Ahmed", details.FullName)
	assert.Equal(t, models.GenderMale, details.Gender)

	rec = f.do(t, http.MethodPost, "/api/people", "admin", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_code", decodeErrors(t, rec).Errors[0].Code)
}

func TestCreatePersonValidationErrors(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/api/people", "admin", `{"code":"bad","name":"Ahmed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "code", decodeErrors(t, rec).Errors[0].Field)

	rec = f.do(t, http.MethodPost, "/api/people", "admin", `{"code":"A0-000-001","name":"  ","generation_level":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrors(t, rec)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "generation_level", resp.Errors[0].Field)
	assert.Equal(t, "name", resp.Errors[1].Field)

	rec = f.do(t, http.MethodPost, "/api/people", "admin", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersonLifecycle(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/people", "admin", `{"code":"A0-000-001","name":"Ahmed"}`).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/people", "admin", `{"code":"A0-000-002","name":"Said","father_code":"A0-000-001"}`).Code)

	rec := f.do(t, http.MethodGet, "/api/people/A0-000-002", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details family.PersonDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "Said Ahmed", details.FullName)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/people/A0-404-404", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/people/nonsense", "", "").Code)

	rec = f.do(t, http.MethodPut, "/api/people/A0-000-001", "admin", `{"name":"Ahmad","nickname":"Abu Said"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/people?q=ahmad", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page family.PersonPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.TotalCount)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/people?page=abc", "", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPut, "/api/people/A0-404-404", "admin", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodDelete, "/api/people/A0-000-001", "", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, "/api/people/A0-000-001", "guest", "").Code)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/people/A0-000-001", "admin", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/people/A0-000-001", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/people/A0-000-002", "", "").Code)
}

func TestAuditAndPermissionsEndpoints(t *testing.T) {
	f := newAPI(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/people", "admin", `{"code":"A0-000-001","name":"Ahmed"}`).Code)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/audit", "", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/audit", "guest", "").Code)

	rec := f.do(t, http.MethodGet, "/api/audit?limit=5", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.AuditEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, permissions.AddMember, entries[0].Action)

	rec = f.do(t, http.MethodGet, "/api/permissions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []permissions.PermissionGroupDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	assert.Len(t, groups, 2)

	rec = f.do(t, http.MethodGet, "/api/permissions/me", "guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"permissions":[]}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/permissions/me", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), permissions.DeleteMember)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPI(t)
	f.do(t, http.MethodGet, "/api/people", "", "")

	rec := f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "familytree_")
}
