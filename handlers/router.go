package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/realtime"
	"github.com/camden-git/familytreebackend/repository"
)

// RouterDeps are the collaborators the HTTP layer needs.
type RouterDeps struct {
	Service        *family.Service
	Users          repository.UserRepository
	Hub            *realtime.Hub // optional
	AllowedOrigins []string
}

// NewRouter builds the JSON API.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	personHandler := &PersonHandler{Service: deps.Service}
	permissionsHandler := &PermissionsHandler{Service: deps.Service}
	auditHandler := &AuditHandler{Service: deps.Service}
	usersHandler := &UsersHandler{Service: deps.Service}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(ActorMiddleware(deps.Users))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/people", func(r chi.Router) {
				r.Get("/", personHandler.ListPeople)
				r.With(RequireActor).Post("/", personHandler.CreatePerson)
				r.Route("/{code}", func(r chi.Router) {
					r.Get("/", personHandler.GetPerson)
					r.With(RequireActor).Put("/", personHandler.UpdatePerson)
					r.With(RequireActor).Delete("/", personHandler.DeletePerson)
				})
			})

			r.Get("/permissions", permissionsHandler.ListDefinedPermissions)
			r.Get("/permissions/me", permissionsHandler.ListMyPermissions)
			r.With(RequireActor).Get("/audit", auditHandler.ListAudit)

			r.Route("/users/{id}/permissions", func(r chi.Router) {
				r.Use(RequireActor)
				r.Get("/", usersHandler.ListUserPermissions)
				r.Put("/{permission}", usersHandler.GrantPermission)
				r.Delete("/{permission}", usersHandler.RevokePermission)
			})
		})

		if deps.Hub != nil {
			r.Get("/events", deps.Hub.ServeWS)
		}
	})

	return r
}
