package index

import (
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
)

// ErrNotReady is returned while no catalog has been loaded.
var ErrNotReady = errors.New("catalog not loaded")

// Status is the load state of the catalog.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// MemoryIndex holds the normalized catalog shared by every request.
// Records are replaced wholesale on reload and never mutated in place.
type MemoryIndex struct {
	mu         sync.RWMutex
	apps       []*domain.Application          // normalized order
	byKey      map[string]*domain.Application // Key -> Application
	facets     map[domain.Facet][]domain.FacetOption
	status     Status
	lastErr    string
	lastReload time.Time
}

// NewMemoryIndex creates an empty index in the loading state
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byKey:  make(map[string]*domain.Application),
		facets: make(map[domain.Facet][]domain.FacetOption),
		status: StatusLoading,
	}
}

// Update replaces the catalog and marks the index ready
func (idx *MemoryIndex) Update(apps []*domain.Application) {
	byKey := make(map[string]*domain.Application, len(apps))
	for _, app := range apps {
		byKey[app.Key] = app
	}
	facets := make(map[domain.Facet][]domain.FacetOption, len(domain.Facets))
	for _, f := range domain.Facets {
		facets[f] = domain.FacetOptions(apps, f)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.apps = apps
	idx.byKey = byKey
	idx.facets = facets
	idx.status = StatusReady
	idx.lastErr = ""
	idx.lastReload = time.Now()
}

// MarkFailed records a load failure. A catalog that already loaded keeps
// serving its previous snapshot.
func (idx *MemoryIndex) MarkFailed(err error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err != nil {
		idx.lastErr = err.Error()
	}
	if idx.status != StatusReady {
		idx.status = StatusFailed
	}
}

// Snapshot returns the current records in normalized order.
// The returned slice is shared and must not be modified.
func (idx *MemoryIndex) Snapshot() ([]*domain.Application, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.status != StatusReady {
		return nil, ErrNotReady
	}
	return idx.apps, nil
}

// Get retrieves an application by key
func (idx *MemoryIndex) Get(key string) (*domain.Application, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	app, ok := idx.byKey[key]
	return app, ok
}

// FacetOptions returns the cached options of one facet
func (idx *MemoryIndex) FacetOptions(f domain.Facet) ([]domain.FacetOption, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.status != StatusReady {
		return nil, ErrNotReady
	}
	return idx.facets[f], nil
}

// Count returns the number of records in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.apps)
}

// Status returns the load state and the last load error, if any
func (idx *MemoryIndex) Status() (Status, string) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.status, idx.lastErr
}

// GetLastReload returns the timestamp of the last successful reload
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
