package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/favorites"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/httpserver/mw"
	"github.com/MrSnakeDoc/appshelf/internal/index"
	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/prefs"
)

// session is the persisted state of the requesting visitor.
type session struct {
	id    string
	kv    localstate.KV
	prefs prefs.Preferences
	favs  *favorites.Store
	log   logger.Logger
}

func openSession(r *http.Request, d deps.Deps) *session {
	id := mw.VisitorID(r.Context())
	log := d.Logger.With(logger.String("visitor_id", id))
	kv := d.Visitors.For(id)

	return &session{
		id:    id,
		kv:    kv,
		prefs: prefs.Load(r.Context(), kv, d.DefaultPageSize, log),
		favs:  favorites.Load(r.Context(), kv, log),
		log:   log,
	}
}

// catalog returns the records or writes a 503 explaining why there are none.
func catalog(w http.ResponseWriter, d deps.Deps) ([]*domain.Application, bool) {
	apps, err := d.MemoryIndex.Snapshot()
	if err == nil {
		return apps, true
	}

	msg := "catalog is loading, try again shortly"
	if st, _ := d.MemoryIndex.Status(); st == index.StatusFailed {
		msg = "catalog could not be loaded"
	}
	writeError(w, http.StatusServiceUnavailable, msg)
	return nil, false
}
