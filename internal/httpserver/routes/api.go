package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/mw"
)

func init() { Register(registerCatalog) }

// visitor identifies the caller for every /api route.
func visitor(d deps.Deps) Middleware {
	return mw.Visitor(d.CookieName, d.CookieSecure)
}

func registerCatalog(r chi.Router, d deps.Deps) {
	api := r.With(visitor(d))
	api.Get("/api/apps", handlers.Apps(d))
	api.Get("/api/facets", handlers.Facets(d))
	api.Get("/api/share", handlers.Share(d))
}
