package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"bandly-go/internal/config"
	"bandly-go/internal/metrics"
	"bandly-go/internal/transport/httpserver/handler"
	"bandly-go/internal/transport/httpserver/middleware"
)

const defaultRequestTimeout = 30 * time.Second

// NewRouter builds the API router. m may be nil, which disables request
// metrics and the exposition endpoint.
func NewRouter(cfg config.Config, handlers *handler.Handlers, m *metrics.Metrics) http.Handler {
	timeout := cfg.HTTP.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(chimw.Timeout(timeout))
	r.Use(middleware.NewCORS(cfg.CORS.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Get("/state", handlers.GetState)

		r.Get("/members", handlers.ListMembers)
		r.Post("/members", handlers.CreateMember)
		r.Patch("/members/{id}", handlers.UpdateMember)
		r.Delete("/members/{id}", handlers.DeleteMember)
		r.Get("/members/{id}/events", handlers.ListMemberEvents)

		r.Get("/events", handlers.ListEvents)
		r.Post("/events", handlers.CreateEvent)
		r.Get("/events/{id}", handlers.GetEvent)
		r.Patch("/events/{id}", handlers.UpdateEvent)
		r.Delete("/events/{id}", handlers.DeleteEvent)
		r.Get("/events/{id}/share", handlers.ShareEvent)

		r.Get("/dashboard", handlers.GetDashboard)
		r.Get("/reports", handlers.GetReport)

		r.Get("/profile", handlers.GetProfile)
		r.Put("/profile", handlers.UpdateProfile)
	})

	if m != nil && cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, m.Handler())
	}

	return r
}
