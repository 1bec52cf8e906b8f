package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/appshelf/internal/index"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Status     string `json:"status,omitempty"`
	AppsLoaded *int   `json:"apps_loaded,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the catalog and of redis.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog": checkCatalog(d),
			"redis":   checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// No catalog = nothing to browse
	if c, exists := components["catalog"]; exists && !c.OK {
		return "critical"
	}

	// Redis down = visitor state and stats unavailable
	if rs, exists := components["redis"]; exists && !rs.OK {
		return "degraded"
	}

	return "operational"
}

func checkCatalog(d deps.Deps) componentStatus {
	st, lastErr := d.MemoryIndex.Status()
	count := d.MemoryIndex.Count()

	lastReload := "never"
	if t := d.MemoryIndex.GetLastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}

	return componentStatus{
		OK:         st == index.StatusReady,
		Status:     string(st),
		AppsLoaded: &count,
		LastReload: lastReload,
		Error:      lastErr,
	}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Impact: "visitor-state-in-memory",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "favorites-and-stats-unavailable",
			Error:  "timeout",
		}
	}

	return componentStatus{OK: true}
}
