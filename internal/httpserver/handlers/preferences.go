package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/prefs"
)

type preferencesResponse struct {
	PageSize     string `json:"page_size"`
	Theme        string `json:"theme"`
	FavoritesTab string `json:"favorites_tab,omitempty"`
	LastVisit    *int64 `json:"last_visit,omitempty"` // unix ms
}

// Fields left out of the body are not changed.
type preferencesRequest struct {
	PageSize     *string `json:"page_size"`
	Theme        *string `json:"theme" validate:"omitempty,oneof=light dark system"`
	FavoritesTab *string `json:"favorites_tab" validate:"omitempty,max=64"`
}

func toPreferencesResponse(p prefs.Preferences) preferencesResponse {
	resp := preferencesResponse{
		PageSize:     p.PageSize.String(),
		Theme:        string(p.Theme),
		FavoritesTab: p.FavoritesTab,
	}
	if !p.LastVisit.IsZero() {
		ms := p.LastVisit.UnixMilli()
		resp.LastVisit = &ms
	}
	return resp
}

// Preferences returns the visitor's display preferences.
func Preferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := openSession(r, d)
		writeJSON(w, http.StatusOK, toPreferencesResponse(s.prefs))
	}
}

// UpdatePreferences stores the fields present in the body.
func UpdatePreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req preferencesRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var size domain.PageSize
		if req.PageSize != nil {
			parsed, err := domain.ParsePageSize(*req.PageSize)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid page_size")
				return
			}
			size = parsed
		}

		s := openSession(r, d)
		if req.FavoritesTab != nil && *req.FavoritesTab != "" && !s.favs.HasCategory(*req.FavoritesTab) {
			writeError(w, http.StatusBadRequest, "unknown favorites category")
			return
		}

		ctx := r.Context()
		var err error
		if req.PageSize != nil {
			if err = prefs.SavePageSize(ctx, s.kv, size); err == nil {
				s.prefs.PageSize = size
			}
		}
		if err == nil && req.Theme != nil {
			theme, _ := prefs.ParseTheme(*req.Theme)
			if err = prefs.SaveTheme(ctx, s.kv, theme); err == nil {
				s.prefs.Theme = theme
			}
		}
		if err == nil && req.FavoritesTab != nil {
			if err = prefs.SaveFavoritesTab(ctx, s.kv, *req.FavoritesTab); err == nil {
				s.prefs.FavoritesTab = *req.FavoritesTab
			}
		}
		if err != nil {
			s.log.Warn("failed to save preferences", logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "could not save preferences")
			return
		}

		writeJSON(w, http.StatusOK, toPreferencesResponse(s.prefs))
	}
}
