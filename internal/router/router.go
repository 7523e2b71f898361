// Package router sets up all HTTP routes and middleware chains for the
// cityhall server: RSS feeds, the JSON API, and operational endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cityhall/internal/handlers"
	"cityhall/internal/middleware"
)

// Deps carries the handler groups and settings the router wires up.
type Deps struct {
	Feeds      *handlers.Feeds
	API        *handlers.API
	Revalidate *handlers.Revalidate
	Health     http.HandlerFunc

	// CORSOrigin is the public site origin allowed to call /api.
	CORSOrigin string
	// ChatLimiter throttles the endpoints that call paid upstream APIs.
	ChatLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", d.Health)

	// RSS feeds.
	r.Get("/feed.xml", d.Feeds.All)
	r.Route("/feed", func(r chi.Router) {
		r.Get("/news", d.Feeds.News)
		r.Get("/events", d.Feeds.Events)
		r.Get("/departments/{slug}", d.Feeds.Department)
	})

	// JSON API used by the public site.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(d.CORSOrigin))

		r.Get("/search", d.API.Search)
		r.Get("/alerts", d.API.Alerts)

		r.Group(func(r chi.Router) {
			if d.ChatLimiter != nil {
				r.Use(d.ChatLimiter.Middleware)
			}
			r.Post("/chat", d.API.Chat)
			r.Post("/translate", d.API.Translate)
		})

		r.Post("/revalidate", d.Revalidate.Webhook)
		r.Get("/revalidate/log", d.Revalidate.Log)
	})

	return r
}
