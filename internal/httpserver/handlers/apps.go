package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/view"
)

// Apps serves the page a visitor sees for the query's filters, favorites
// scope and page.
func Apps(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, ok := catalog(w, d)
		if !ok {
			return
		}
		s := openSession(r, d)
		q := r.URL.Query()

		size := s.prefs.PageSize
		if raw := q.Get("page_size"); raw != "" {
			parsed, err := domain.ParsePageSize(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid page_size")
				return
			}
			size = parsed
		}

		tab := s.prefs.FavoritesTab
		if q.Has("tab") {
			tab = q.Get("tab")
		}

		o := view.New(records, s.favs, view.WithPageSize(size), view.WithFavoritesTab(tab))
		if _, err := o.ApplyURL(q); err != nil {
			s.log.Error("failed to apply query", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "could not build page")
			return
		}

		if q.Get("favorites") == "1" {
			// ignored in a shared collection view
			if _, err := o.SetFavoritesOnly(true); err != nil && !errors.Is(err, view.ErrReadOnly) {
				writeError(w, http.StatusInternalServerError, "could not build page")
				return
			}
		}
		if q.Has("tab") {
			_, _ = o.SetFavoritesTab(tab)
		}

		page := o.Current()
		if raw := q.Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid page")
				return
			}
			page, _ = o.SetPage(n)
		}

		writeJSON(w, http.StatusOK, page)
	}
}
