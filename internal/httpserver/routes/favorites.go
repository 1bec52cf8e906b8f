package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/handlers"
)

func init() { Register(registerFavorites) }

func registerFavorites(r chi.Router, d deps.Deps) {
	api := r.With(visitor(d))
	api.Get("/api/favorites", handlers.Favorites(d))
	api.Put("/api/favorites/{key}", handlers.AddFavorite(d))
	api.Delete("/api/favorites/{key}", handlers.RemoveFavorite(d))
	api.Delete("/api/favorites/categories/{name}", handlers.DeleteCategory(d))
	api.Patch("/api/favorites/categories/{name}", handlers.RenameCategory(d))
}
