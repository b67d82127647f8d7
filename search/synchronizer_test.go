package search_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/database/dbtest"
	"github.com/camden-git/familytreebackend/metrics"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/repository"
	"github.com/camden-git/familytreebackend/search"
)

func createPerson(t *testing.T, db *gorm.DB, code, name, father string) {
	t.Helper()
	p := &models.Person{Code: code, Name: name}
	if father != "" {
		p.FatherCode = dbtest.Ptr(father)
	}
	require.NoError(t, repository.NewGormPersonRepository(db).Create(context.Background(), p))
}

func apply(t *testing.T, db *gorm.DB, s *search.Synchronizer, ev models.ChangeEvent) {
	t.Helper()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return s.Apply(context.Background(), tx, ev)
	}))
}

func entry(t *testing.T, db *gorm.DB, code string) *models.SearchEntry {
	t.Helper()
	e, err := repository.NewGormSearchRepository(db).Get(context.Background(), code)
	require.NoError(t, err)
	return e
}

func TestApplyCreatedBuildsProjection(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(false)

	createPerson(t, db, "A0-000-001", "أحمد", "")
	p := &models.Person{Code: "A0-000-002", Name: "سعيد", FatherCode: dbtest.Ptr("A0-000-001"), GenerationLevel: 2, Nickname: dbtest.Ptr("أبو عمر")}
	require.NoError(t, repository.NewGormPersonRepository(db).Create(context.Background(), p))

	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeCreated, Code: "A0-000-002"})

	e := entry(t, db, "A0-000-002")
	assert.Equal(t, "سعيد أحمد", e.FullName)
	assert.Equal(t, "سعيد احمد ابو عمر", e.SearchText)
	assert.Equal(t, 2, e.GenerationLevel)
	assert.Equal(t, "أبو عمر", *e.Nickname)
}

func TestApplyUpdatedWithoutNameFieldsSkips(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(false)
	createPerson(t, db, "A0-000-001", "Ahmed", "")
	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeCreated, Code: "A0-000-001"})

	require.NoError(t, db.Model(&models.Person{}).Where("code = ?", "A0-000-001").Update("name", "Changed").Error)
	skips := testutil.ToFloat64(metrics.SearchSync.WithLabelValues(metrics.SyncSkip))

	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeUpdated, Code: "A0-000-001", Changed: []string{"relation_type"}})
	assert.Equal(t, "Ahmed", entry(t, db, "A0-000-001").FullName)
	assert.Equal(t, skips+1, testutil.ToFloat64(metrics.SearchSync.WithLabelValues(metrics.SyncSkip)))

	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeUpdated, Code: "A0-000-001", Changed: []string{"name"}})
	assert.Equal(t, "Changed", entry(t, db, "A0-000-001").FullName)
}

func seedFamily(t *testing.T, db *gorm.DB, s *search.Synchronizer) {
	t.Helper()
	createPerson(t, db, "A0-000-001", "Ahmed", "")
	createPerson(t, db, "A0-000-002", "Said", "A0-000-001")
	createPerson(t, db, "A0-000-003", "Omar", "A0-000-002")
	for _, code := range []string{"A0-000-001", "A0-000-002", "A0-000-003"} {
		apply(t, db, s, models.ChangeEvent{Kind: models.ChangeCreated, Code: code})
	}
}

func TestRenameWithoutCascadeLeavesDescendantsStale(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(false)
	seedFamily(t, db, s)

	require.NoError(t, db.Model(&models.Person{}).Where("code = ?", "A0-000-001").Update("name", "Ahmad").Error)
	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeUpdated, Code: "A0-000-001", Changed: []string{"name"}})

	assert.Equal(t, "Ahmad", entry(t, db, "A0-000-001").FullName)
	assert.Equal(t, "Said Ahmed", entry(t, db, "A0-000-002").FullName)
	assert.Equal(t, "Omar Said Ahmed", entry(t, db, "A0-000-003").FullName)
}

func TestRenameWithCascadeRefreshesDescendants(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(true)
	seedFamily(t, db, s)

	require.NoError(t, db.Model(&models.Person{}).Where("code = ?", "A0-000-001").Update("name", "Ahmad").Error)
	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeUpdated, Code: "A0-000-001", Changed: []string{"name"}})

	assert.Equal(t, "Said Ahmad", entry(t, db, "A0-000-002").FullName)
	assert.Equal(t, "Omar Said Ahmad", entry(t, db, "A0-000-003").FullName)
}

func TestCreatingFatherRefreshesEarlierChildren(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(true)

	createPerson(t, db, "A0-000-002", "Said", "A0-000-001")
	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeCreated, Code: "A0-000-002"})
	assert.Equal(t, "Said", entry(t, db, "A0-000-002").FullName)

	createPerson(t, db, "A0-000-001", "Ahmed", "")
	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeCreated, Code: "A0-000-001"})
	assert.Equal(t, "Said Ahmed", entry(t, db, "A0-000-002").FullName)
}

func TestNicknameChangeDoesNotCascade(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(true)
	seedFamily(t, db, s)

	// a stale child entry shows whether the cascade ran
	require.NoError(t, db.Model(&models.SearchEntry{}).Where("code = ?", "A0-000-002").Update("full_name", "stale").Error)
	require.NoError(t, db.Model(&models.Person{}).Where("code = ?", "A0-000-001").Update("nickname", "Abu Said").Error)
	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeUpdated, Code: "A0-000-001", Changed: []string{"nickname"}})

	assert.Equal(t, "Abu Said", *entry(t, db, "A0-000-001").Nickname)
	assert.Equal(t, "stale", entry(t, db, "A0-000-002").FullName)
}

func TestCascadeSurvivesFatherCycle(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(true)
	createPerson(t, db, "A0-000-001", "One", "A0-000-002")
	createPerson(t, db, "A0-000-002", "Two", "A0-000-001")

	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeUpdated, Code: "A0-000-001", Changed: []string{"father_code"}})

	assert.Equal(t, "One Two", entry(t, db, "A0-000-001").FullName)
	assert.Equal(t, "Two One", entry(t, db, "A0-000-002").FullName)
}

func TestApplyDeletedRemovesEntry(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(true)
	seedFamily(t, db, s)

	require.NoError(t, repository.NewGormPersonRepository(db).Delete(context.Background(), "A0-000-001"))
	apply(t, db, s, models.ChangeEvent{Kind: models.ChangeDeleted, Code: "A0-000-001"})

	_, err := repository.NewGormSearchRepository(db).Get(context.Background(), "A0-000-001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, "Said", entry(t, db, "A0-000-002").FullName)
	assert.Equal(t, "Omar Said", entry(t, db, "A0-000-003").FullName)
}

func TestSyncMissingPersonRemovesEntry(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(false)
	require.NoError(t, repository.NewGormSearchRepository(db).Upsert(context.Background(),
		&models.SearchEntry{Code: "A0-000-009", FullName: "ghost", SearchText: "ghost"}))

	require.NoError(t, s.SyncCode(context.Background(), db, "A0-000-009"))

	_, err := repository.NewGormSearchRepository(db).Get(context.Background(), "A0-000-009")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSyncRollsBackWithTransaction(t *testing.T) {
	db := dbtest.Open(t)
	s := search.NewSynchronizer(false)
	createPerson(t, db, "A0-000-001", "Ahmed", "")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.Sync(context.Background(), tx, "A0-000-001"); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	_, err = repository.NewGormSearchRepository(db).Get(context.Background(), "A0-000-001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestApplyUnknownKind(t *testing.T) {
	db := dbtest.Open(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		return search.NewSynchronizer(false).Apply(context.Background(), tx, models.ChangeEvent{Kind: "renamed", Code: "A0-000-001"})
	})
	assert.Error(t, err)
}
