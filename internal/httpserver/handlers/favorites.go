package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/appshelf/internal/favorites"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/prefs"
	"github.com/MrSnakeDoc/appshelf/internal/view"
)

type addFavoriteRequest struct {
	Category string `json:"category" validate:"max=64"`
}

type renameCategoryRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// Favorites returns the visitor's favorites document.
func Favorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := openSession(r, d)
		writeJSON(w, http.StatusOK, s.favs.Document())
	}
}

// AddFavorite files the application {key} under the requested category.
func AddFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, s, ok := favoritesView(w, r, d)
		if !ok {
			return
		}
		key, ok := recordKey(w, r, d)
		if !ok {
			return
		}

		var req addFavoriteRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		_, err := o.AddFavorite(r.Context(), key, req.Category)
		respondFavorites(w, s, err)
	}
}

// RemoveFavorite unfavorites the application {key}.
func RemoveFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, s, ok := favoritesView(w, r, d)
		if !ok {
			return
		}
		key, err := url.PathUnescape(chi.URLParam(r, "key"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid key")
			return
		}

		_, err = o.RemoveFavorite(r.Context(), key)
		followTab(r, s, o)
		respondFavorites(w, s, err)
	}
}

// DeleteCategory removes the category {name}. items=keep moves its members
// to the default category, anything else drops them.
func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, s, ok := favoritesView(w, r, d)
		if !ok {
			return
		}
		name, err := url.PathUnescape(chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}

		mode := favorites.DropItems
		switch r.URL.Query().Get("items") {
		case "", "drop":
		case "keep":
			mode = favorites.KeepItems
		default:
			writeError(w, http.StatusBadRequest, "items must be keep or drop")
			return
		}

		_, err = o.DeleteCategory(r.Context(), name, mode)
		followTab(r, s, o)
		respondFavorites(w, s, err)
	}
}

// RenameCategory renames the category {name}.
func RenameCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, s, ok := favoritesView(w, r, d)
		if !ok {
			return
		}
		name, err := url.PathUnescape(chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}

		var req renameCategoryRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		_, err = o.RenameCategory(r.Context(), name, req.Name)
		followTab(r, s, o)
		respondFavorites(w, s, err)
	}
}

// favoritesView opens the session and an orchestrator on its active tab.
func favoritesView(w http.ResponseWriter, r *http.Request, d deps.Deps) (*view.Orchestrator, *session, bool) {
	records, ok := catalog(w, d)
	if !ok {
		return nil, nil, false
	}
	s := openSession(r, d)
	return view.New(records, s.favs, view.WithFavoritesTab(s.prefs.FavoritesTab)), s, true
}

// recordKey reads {key} and checks it names a catalog application.
func recordKey(w http.ResponseWriter, r *http.Request, d deps.Deps) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "invalid key")
		return "", false
	}
	if _, ok := d.MemoryIndex.Get(key); !ok {
		writeError(w, http.StatusNotFound, "unknown application")
		return "", false
	}
	return key, true
}

// followTab persists the active tab when a mutation moved it.
func followTab(r *http.Request, s *session, o *view.Orchestrator) {
	tab := o.State().FavoritesTab
	if tab == s.prefs.FavoritesTab {
		return
	}
	if err := prefs.SaveFavoritesTab(r.Context(), s.kv, tab); err != nil {
		s.log.Warn("failed to save favorites tab", logger.Error(err))
	}
}

func respondFavorites(w http.ResponseWriter, s *session, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.favs.Document())
	case errors.Is(err, favorites.ErrDefaultCategory), errors.Is(err, favorites.ErrInvalidName), errors.Is(err, favorites.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, favorites.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, favorites.ErrCategoryExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Warn("failed to persist favorites", logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not save favorites")
	}
}
