package permissions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/database/dbtest"
	"github.com/camden-git/familytreebackend/metrics"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/permissions"
	"github.com/camden-git/familytreebackend/repository"
)

type failingStore struct{}

func (failingStore) UserHasPermission(context.Context, uint, string) (bool, error) {
	return false, errors.New("database is locked")
}

func TestEvaluatorAgainstStore(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, database.SeedPermissions(db, permissions.SeedRows()))
	grants := repository.NewGormPermissionRepository(db)
	eval := permissions.NewEvaluator(grants)
	ctx := context.Background()

	admin := dbtest.CreateUser(t, db, "root", models.RoleAdmin)
	editor := dbtest.CreateUser(t, db, "editor", models.RoleUser)
	viewer := dbtest.CreateUser(t, db, "viewer", models.RoleUser)
	require.NoError(t, grants.Grant(ctx, editor.ID, permissions.EditMember))

	assert.False(t, eval.Can(ctx, nil, permissions.AddMember))
	assert.True(t, eval.Can(ctx, admin, permissions.DeleteMember))
	assert.True(t, eval.Can(ctx, admin, "capability_nobody_defined"))
	assert.True(t, eval.Can(ctx, editor, permissions.EditMember))
	assert.False(t, eval.Can(ctx, editor, permissions.DeleteMember))
	assert.False(t, eval.Can(ctx, viewer, permissions.EditMember))

	assert.NoError(t, eval.Require(ctx, editor, permissions.EditMember))
	assert.ErrorIs(t, eval.Require(ctx, viewer, permissions.EditMember), permissions.ErrPermissionDenied)

	require.NoError(t, grants.Revoke(ctx, editor.ID, permissions.EditMember))
	assert.False(t, eval.Can(ctx, editor, permissions.EditMember))
}

func TestEvaluatorStoreErrorDenies(t *testing.T) {
	eval := permissions.NewEvaluator(failingStore{})
	before := testutil.ToFloat64(metrics.PermissionChecks.WithLabelValues("error"))

	assert.False(t, eval.Can(context.Background(), &models.User{ID: 7, Role: models.RoleUser}, permissions.AddMember))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PermissionChecks.WithLabelValues("error")))

	assert.True(t, eval.Can(context.Background(), &models.User{ID: 1, Role: models.RoleAdmin}, permissions.AddMember))
}

func TestDefinitions(t *testing.T) {
	keys := permissions.GetAllPermissionKeys()
	assert.ElementsMatch(t, []string{"add_member", "edit_member", "delete_member", "view_logs", "manage_users"}, keys)
	assert.True(t, permissions.IsValidPermissionKey(permissions.ViewLogs))
	assert.False(t, permissions.IsValidPermissionKey("album.create"))

	def, ok := permissions.GetPermissionDefinition(permissions.AddMember)
	require.True(t, ok)
	assert.Equal(t, "Add Member", def.Name)

	rows := permissions.SeedRows()
	require.Len(t, rows, 5)
	assert.Equal(t, "family", rows[0].Category)
	assert.Equal(t, "system", rows[4].Category)
}
