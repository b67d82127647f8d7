package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/repository"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the key used to store the user object in the request context.
	UserContextKey ContextKey = "user"
)

// UserFromContext returns the authenticated actor, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserContextKey).(*models.User)
	return user
}

// ActorMiddleware resolves HTTP Basic credentials into the request's actor.
// Requests without credentials continue anonymously; wrong credentials are
// rejected.
func ActorMiddleware(users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByUsername(r.Context(), username)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error().Err(err).Str("username", username).Msg("failed to load user")
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
			if user == nil || !user.CheckPassword(password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="familytree"`)
				WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects anonymous requests. It should be used after ActorMiddleware.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="familytree"`)
			WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
