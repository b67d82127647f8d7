package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/database/dbtest"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/repository"
)

func TestUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "mona", Role: models.RoleUser}
	require.NoError(t, user.SetPassword("pw"))
	require.NoError(t, repo.Create(ctx, user))

	byName, err := repo.GetByUsername(ctx, "mona")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.True(t, byName.CheckPassword("pw"))

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "mona", byID.Username)

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), gorm.ErrRecordNotFound)
}

func TestPermissionRepository(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, database.SeedPermissions(db, []models.Permission{
		{Name: "add_member", Category: "family"},
		{Name: "view_logs", Category: "system"},
	}))
	repo := repository.NewGormPermissionRepository(db)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "mona", models.RoleUser)

	has, err := repo.UserHasPermission(ctx, user.ID, "add_member")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.Grant(ctx, user.ID, "add_member"))
	require.NoError(t, repo.Grant(ctx, user.ID, "add_member"))

	has, err = repo.UserHasPermission(ctx, user.ID, "add_member")
	require.NoError(t, err)
	assert.True(t, has)

	perms, err := repo.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "add_member", perms[0].Name)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Revoke(ctx, user.ID, "add_member"))
	has, err = repo.UserHasPermission(ctx, user.ID, "add_member")
	require.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, repo.Grant(ctx, user.ID, "no_such_permission"), gorm.ErrRecordNotFound)
}

func TestSearchRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewGormSearchRepository(db)
	people := repository.NewGormPersonRepository(db)
	ctx := context.Background()

	require.NoError(t, people.Create(ctx, newPerson("A0-000-001", "Ahmed", nil)))
	require.NoError(t, people.Create(ctx, newPerson("A0-000-002", "Said", dbtest.Ptr("A0-000-001"))))

	missing, err := repo.MissingCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A0-000-001", "A0-000-002"}, missing)

	require.NoError(t, repo.Upsert(ctx, &models.SearchEntry{Code: "A0-000-001", FullName: "Ahmed", SearchText: "ahmed"}))
	require.NoError(t, repo.Upsert(ctx, &models.SearchEntry{Code: "A0-000-002", FullName: "Said Ahmed", SearchText: "said ahmed", GenerationLevel: 2}))
	require.NoError(t, repo.Upsert(ctx, &models.SearchEntry{Code: "A0-000-001", FullName: "Ahmad", SearchText: "ahmad", Nickname: dbtest.Ptr("Abu Said")}))

	entry, err := repo.Get(ctx, "A0-000-001")
	require.NoError(t, err)
	assert.Equal(t, "Ahmad", entry.FullName)
	assert.Equal(t, "Abu Said", *entry.Nickname)

	missing, err = repo.MissingCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)

	list, err := repo.List(ctx, database.SearchFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ahmad", list[0].FullName)

	total, err := repo.Count(ctx, database.SearchFilter{Mode: database.SearchText, Term: "said"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total) // one by name, one by nickname

	total, err = repo.Count(ctx, database.SearchFilter{MinLevel: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, repo.Delete(ctx, "A0-000-002"))
	require.NoError(t, repo.Delete(ctx, "A0-000-002"))
	_, err = repo.Get(ctx, "A0-000-002")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAuditRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewGormAuditRepository(db)
	ctx := context.Background()

	older := &models.AuditEntry{UserID: 1, Action: "add_member", Code: "A0-000-001", CreatedAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Record(ctx, older))
	assert.Len(t, older.ID, 36)
	require.NoError(t, repo.Record(ctx, &models.AuditEntry{UserID: 1, Action: "delete_member", Code: "A0-000-001"}))

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "delete_member", entries[0].Action)

	entries, err = repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
