package family

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/permissions"
	"github.com/camden-git/familytreebackend/repository"
)

// Audit actions of grant changes.
const (
	ActionGrantPermission  = "grant_permission"
	ActionRevokePermission = "revoke_permission"
)

var errUnknownPermission = errors.New("is not a defined permission")

// ListUserPermissions returns the permissions granted to a user. It needs
// manage_users.
func (s *Service) ListUserPermissions(ctx context.Context, actor *models.User, userID uint) ([]models.Permission, error) {
	if err := s.evaluator.Require(ctx, actor, permissions.ManageUsers); err != nil {
		return nil, err
	}
	stores := s.stores(s.db)
	if err := userExists(ctx, stores.Users, userID); err != nil {
		return nil, err
	}
	perms, err := stores.Permissions.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []models.Permission{}
	}
	return perms, nil
}

// GrantPermission gives a user a permission. Granting a held permission
// succeeds without change. It needs manage_users.
func (s *Service) GrantPermission(ctx context.Context, actor *models.User, userID uint, name string) error {
	return s.changeGrant(ctx, actor, userID, name, ActionGrantPermission)
}

// RevokePermission takes a permission away from a user. Revoking one that is
// not held succeeds without change. It needs manage_users.
func (s *Service) RevokePermission(ctx context.Context, actor *models.User, userID uint, name string) error {
	return s.changeGrant(ctx, actor, userID, name, ActionRevokePermission)
}

func (s *Service) changeGrant(ctx context.Context, actor *models.User, userID uint, name, action string) error {
	if err := s.evaluator.Require(ctx, actor, permissions.ManageUsers); err != nil {
		return err
	}
	if !permissions.IsValidPermissionKey(name) {
		return &ValidationError{Err: validation.Errors{"permission": errUnknownPermission}}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := s.stores(tx)
		if err := userExists(ctx, stores.Users, userID); err != nil {
			return err
		}
		var err error
		if action == ActionGrantPermission {
			err = stores.Permissions.Grant(ctx, userID, name)
		} else {
			err = stores.Permissions.Revoke(ctx, userID, name)
		}
		if err != nil {
			return fmt.Errorf("failed to %s for user %d: %w", action, userID, err)
		}
		return stores.Audit.Record(ctx, &models.AuditEntry{
			UserID:       actorID(actor),
			Action:       action,
			TargetUserID: userID,
			Detail:       name,
		})
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("action", action).Str("permission", name).Uint("target_user_id", userID).Uint("user_id", actorID(actor)).Msg("grant changed")
	return nil
}

func userExists(ctx context.Context, users repository.UserRepository, userID uint) error {
	if _, err := users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
