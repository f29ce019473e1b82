// Package http provides the HTTP server and routing for the API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loopmeet/api/internal/config"
	"github.com/loopmeet/api/internal/infra/http/handler"
	"github.com/loopmeet/api/internal/infra/http/middleware"
	"github.com/loopmeet/api/pkg/logger"
	"github.com/loopmeet/api/pkg/supabase"
)

// Handlers holds the HTTP handlers for route registration.
type Handlers struct {
	Health     *handler.HealthHandler
	Group      *handler.GroupHandler
	Invitation *handler.InvitationHandler
	User       *handler.UserHandler
}

// NewRouter assembles the route tree. Probes and metrics are public; the API
// surface sits behind bearer-token authentication.
func NewRouter(
	cfg *config.Config,
	log *logger.Logger,
	tokens *supabase.TokenValidator,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.Metrics(),
		middleware.Logger(log),
	)

	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens, log))

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.Group.List)
			r.Post("/", h.Group.Create)
			r.Get("/{groupID}", h.Group.Detail)
			r.Patch("/{groupID}", h.Group.Rename)
			r.Post("/{groupID}/invitations", h.Invitation.Create)
		})

		r.Route("/invitations", func(r chi.Router) {
			r.Get("/", h.Invitation.ListPending)
			r.Post("/{invitationID}/accept", h.Invitation.Accept)
			r.Post("/{invitationID}/decline", h.Invitation.Decline)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/profile", h.User.GetProfile)
			r.Post("/profile", h.User.UpsertProfile)
			r.Patch("/profile", h.User.UpdateProfile)
			r.Post("/password", h.User.ChangePassword)
		})
	})

	return r
}
