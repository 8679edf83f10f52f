package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otakushelf/otakushelf/internal/handler"
)

func Setup(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Websocket connections outlive the request timeout, so only the
	// plain API routes get one.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Post("/api/chat", h.Chat)
		r.Get("/users/{userID}/recommendations", h.GetRecommendations)
		r.Post("/users/{userID}/actions", h.RecordAction)
		r.Get("/users/{userID}/profile", h.GetProfile)
		r.Post("/users/{userID}/import", h.ImportMAL)
	})

	r.Get("/ws/import/{jobID}", h.ImportProgress)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	return r
}
