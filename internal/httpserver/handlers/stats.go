package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/mw"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

type pingResponse struct {
	Counted bool `json:"counted"`
}

// StatsPing records a visit, at most once per window and visitor.
func StatsPing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mw.VisitorID(r.Context())
		counted, err := d.Stats.Ping(r.Context(), id, d.Visitors.For(id))
		if err != nil {
			d.Logger.Warn("stats ping failed", logger.String("visitor_id", id), logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "stats unavailable")
			return
		}
		writeJSON(w, http.StatusOK, pingResponse{Counted: counted})
	}
}

// StatsTotal writes the visit counter as plain text.
func StatsTotal(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := d.Stats.Total(r.Context())
		if err != nil {
			d.Logger.Warn("stats total failed", logger.Error(err))
			http.Error(w, "stats unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(strconv.FormatInt(total, 10)))
	}
}
