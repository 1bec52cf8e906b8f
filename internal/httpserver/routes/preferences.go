package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/handlers"
)

func init() { Register(registerPreferences) }

func registerPreferences(r chi.Router, d deps.Deps) {
	api := r.With(visitor(d))
	api.Get("/api/preferences", handlers.Preferences(d))
	api.Put("/api/preferences", handlers.UpdatePreferences(d))
}
