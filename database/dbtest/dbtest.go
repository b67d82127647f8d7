// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/camden-git/familytreebackend/config"
	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/models"
)

// Open returns a migrated in-memory SQLite database private to the test.
// It uses a single connection, so code under test must not use the root
// handle while a transaction is open.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(database.Options{
		Driver:       config.DriverSQLite,
		DSN:          database.SQLiteMemoryDSN(uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Role: role}
	require.NoError(t, user.SetPassword("secret-"+username))
	require.NoError(t, db.Create(user).Error)
	return user
}

// Grant gives the user the named permissions, creating missing permission rows.
func Grant(t testing.TB, db *gorm.DB, user *models.User, names ...string) {
	t.Helper()
	for _, name := range names {
		perm := models.Permission{Name: name, Category: "test"}
		require.NoError(t, db.Where(models.Permission{Name: name}).FirstOrCreate(&perm).Error)
		require.NoError(t, db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).
			Create(&models.UserPermission{UserID: user.ID, PermissionID: perm.ID}).Error)
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
