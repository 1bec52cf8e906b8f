package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/index"
)

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Catalog string `json:"catalog"`
}

// Readyz answers 200 once a catalog is being served, 503 before.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, _ := d.MemoryIndex.Status()
		ready := st == index.StatusReady

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready, Catalog: string(st)})
	}
}
