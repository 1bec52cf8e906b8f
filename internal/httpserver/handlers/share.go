package handlers

import (
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/urlstate"
	"github.com/MrSnakeDoc/appshelf/internal/view"
)

type shareResponse struct {
	URL string `json:"url"`
}

// Share builds a shareable link. With collection=favorites it shares the
// visitor's favorites (one category when tab is set), otherwise the filters
// or ids carried by the query.
func Share(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var values url.Values
		switch q.Get("collection") {
		case "":
			decoded := urlstate.Decode(q)
			if decoded.IsCustomView() {
				values = urlstate.EncodeCollection(*decoded.Collection)
			} else {
				values = urlstate.EncodeFilters(decoded.Filter)
			}
		case "favorites":
			records, ok := catalog(w, d)
			if !ok {
				return
			}
			s := openSession(r, d)
			tab := q.Get("tab")
			if tab != "" && !s.favs.HasCategory(tab) {
				writeError(w, http.StatusNotFound, "unknown favorites category")
				return
			}
			c := view.New(records, s.favs).FavoritesCollection(tab)
			if len(c.IDs) == 0 {
				writeError(w, http.StatusUnprocessableEntity, "nothing to share")
				return
			}
			values = urlstate.EncodeCollection(c)
		default:
			writeError(w, http.StatusBadRequest, "unknown collection")
			return
		}

		writeJSON(w, http.StatusOK, shareResponse{URL: urlstate.GenerateShareableURL(d.PublicBaseURL, values)})
	}
}
