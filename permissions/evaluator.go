package permissions

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/camden-git/familytreebackend/logger"
	"github.com/camden-git/familytreebackend/metrics"
	"github.com/camden-git/familytreebackend/models"
)

// ErrPermissionDenied is returned by Require when the actor lacks a capability.
var ErrPermissionDenied = errors.New("permission denied")

// GrantStore answers whether a user holds an explicit grant.
type GrantStore interface {
	UserHasPermission(ctx context.Context, userID uint, name string) (bool, error)
}

// Evaluator decides whether an actor may use a capability. Admins pass
// without grants; everyone else needs a user_permissions row. Nothing is
// cached, so a revoked grant takes effect on the next check.
type Evaluator struct {
	grants GrantStore
	log    zerolog.Logger
}

func NewEvaluator(grants GrantStore) *Evaluator {
	return &Evaluator{grants: grants, log: logger.Component("permissions")}
}

// Can reports whether actor holds capability. A nil actor never does, and
// a failing store read is logged and treated as a denial.
func (e *Evaluator) Can(ctx context.Context, actor *models.User, capability string) bool {
	allowed, reason := e.evaluate(ctx, actor, capability)
	metrics.PermissionChecks.WithLabelValues(reason).Inc()
	return allowed
}

func (e *Evaluator) evaluate(ctx context.Context, actor *models.User, capability string) (bool, string) {
	if actor == nil {
		return false, "anonymous"
	}
	if actor.IsAdmin() {
		return true, "admin"
	}
	ok, err := e.grants.UserHasPermission(ctx, actor.ID, capability)
	if err != nil {
		e.log.Error().Err(err).Uint("user_id", actor.ID).Str("capability", capability).Msg("permission lookup failed")
		return false, "error"
	}
	if ok {
		return true, "granted"
	}
	return false, "denied"
}

// Require is Can as an error.
func (e *Evaluator) Require(ctx context.Context, actor *models.User, capability string) error {
	if !e.Can(ctx, actor, capability) {
		return ErrPermissionDenied
	}
	return nil
}
