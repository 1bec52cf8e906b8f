// Package localstate is the per-visitor key-value namespace holding what a
// browser would keep in local storage: favorites, page size, theme and the
// last visit timestamp.
package localstate

import (
	"context"
	"errors"
	"sync"
)

// Well-known keys of a visitor namespace.
const (
	KeyFavorites    = "favorites"
	KeyLastVisit    = "last_visit"
	KeyPageSize     = "page_size"
	KeyTheme        = "theme"
	KeyFavoritesTab = "favorites_tab"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("localstate: key not found")

// KV is a visitor's key-value namespace.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV is a process-local KV. Used by the CLI and tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Provider opens the namespace of a visitor.
type Provider interface {
	For(visitorID string) KV
}

// MemoryProvider hands out one MemoryKV per visitor.
type MemoryProvider struct {
	mu       sync.Mutex
	visitors map[string]*MemoryKV
}

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{visitors: make(map[string]*MemoryKV)}
}

func (p *MemoryProvider) For(visitorID string) KV {
	p.mu.Lock()
	defer p.mu.Unlock()

	kv, ok := p.visitors[visitorID]
	if !ok {
		kv = NewMemoryKV()
		p.visitors[visitorID] = kv
	}
	return kv
}
