package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/urlstate"
)

// Facets returns the options of every facet keyed by its query parameter.
func Facets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := catalog(w, d); !ok {
			return
		}

		out := make(map[string][]domain.FacetOption, len(domain.Facets))
		for _, f := range domain.Facets {
			opts, err := d.MemoryIndex.FacetOptions(f)
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "catalog is loading, try again shortly")
				return
			}
			if opts == nil {
				opts = []domain.FacetOption{}
			}
			out[urlstate.ParamFor(f)] = opts
		}

		writeJSON(w, http.StatusOK, out)
	}
}
