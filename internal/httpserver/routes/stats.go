package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/mw"
)

func init() { Register(registerStats) }

func registerStats(r chi.Router, d deps.Deps) {
	// visitor must run first so the limiter keys on the visitor id
	r.With(visitor(d), mw.RateLimit(mw.RateLimitConfig{
		Burst:      d.RateLimitBurst,
		Refill:     d.RateLimitRefill,
		TrustProxy: d.TrustProxy,
	})).Post("/api/stats/ping", handlers.StatsPing(d))
	r.Get("/api/stats/total", handlers.StatsTotal(d))
}
