package database

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/familytreebackend/models"
)

// SeedPermissions inserts the given permissions, leaving existing names untouched.
func SeedPermissions(db *gorm.DB, perms []models.Permission) error {
	if len(perms) == 0 {
		return nil
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&perms).Error
	if err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}
	return nil
}

// EnsureAdmin creates the administrator account when it does not exist yet.
// An existing account is never modified.
func EnsureAdmin(db *gorm.DB, username, password string) (bool, error) {
	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up admin user %s: %w", username, err)
	}
	if password == "" {
		log.Warn().Str("username", username).Msg("ADMIN_PASSWORD not set, admin account not created")
		return false, nil
	}

	admin := models.User{Username: username, Role: models.RoleAdmin}
	if err := admin.SetPassword(password); err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin user %s: %w", username, err)
	}
	log.Info().Str("username", username).Msg("admin account created")
	return true, nil
}
