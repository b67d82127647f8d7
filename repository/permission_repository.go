package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/familytreebackend/models"
)

type GormPermissionRepository struct {
	db *gorm.DB
}

func NewGormPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

func (r *GormPermissionRepository) ListAll(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return perms, nil
}

func (r *GormPermissionRepository) GetByName(ctx context.Context, name string) (*models.Permission, error) {
	var perm models.Permission
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get permission %s: %w", name, err)
	}
	return &perm, nil
}

// UserHasPermission reports whether a grant row links the user to the named
// permission. Roles are not considered here.
func (r *GormPermissionRepository) UserHasPermission(ctx context.Context, userID uint, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserPermission{}).
		Joins("JOIN permissions ON permissions.id = user_permissions.permission_id").
		Where("user_permissions.user_id = ? AND permissions.name = ?", userID, name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s for user %d: %w", name, userID, err)
	}
	return count > 0, nil
}

// Grant links the user to the named permission. Granting twice is a no-op.
func (r *GormPermissionRepository) Grant(ctx context.Context, userID uint, name string) error {
	perm, err := r.GetByName(ctx, name)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).
		Create(&models.UserPermission{UserID: userID, PermissionID: perm.ID}).Error
	if err != nil {
		return fmt.Errorf("failed to grant %s to user %d: %w", name, userID, err)
	}
	return nil
}

func (r *GormPermissionRepository) Revoke(ctx context.Context, userID uint, name string) error {
	perm, err := r.GetByName(ctx, name)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND permission_id = ?", userID, perm.ID).
		Delete(&models.UserPermission{}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke %s from user %d: %w", name, userID, err)
	}
	return nil
}

func (r *GormPermissionRepository) ListForUser(ctx context.Context, userID uint) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Order("permissions.name ASC").
		Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for user %d: %w", userID, err)
	}
	return perms, nil
}
