// Package stats counts site visits, deduplicated per visitor over a window.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/prefs"
)

// DefaultWindow is the per-visitor dedup window.
const DefaultWindow = 15 * time.Minute

// ErrUnavailable wraps recorder failures.
var ErrUnavailable = errors.New("stats unavailable")

// Recorder is the counter backend. The Redis store implements it.
type Recorder interface {
	RecordVisit(ctx context.Context, visitorID string, window time.Duration) (bool, error)
	VisitTotal(ctx context.Context) (int64, error)
}

// Service records visits and the visitor's last visit time.
type Service struct {
	rec    Recorder
	window time.Duration
	log    logger.Logger
	now    func() time.Time
}

// NewService creates a stats service. A zero window uses DefaultWindow.
func NewService(rec Recorder, window time.Duration, log logger.Logger) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{rec: rec, window: window, log: log, now: time.Now}
}

// Ping counts a visit unless the visitor pinged within the window. The
// visitor's last_visit is updated either way.
func (s *Service) Ping(ctx context.Context, visitorID string, kv localstate.KV) (bool, error) {
	counted, err := s.rec.RecordVisit(ctx, visitorID, s.window)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := prefs.TouchLastVisit(ctx, kv, s.now()); err != nil {
		s.log.Warn("failed to save last visit", logger.Error(err))
	}
	return counted, nil
}

// Total returns the number of counted visits.
func (s *Service) Total(ctx context.Context) (int64, error) {
	n, err := s.rec.VisitTotal(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return n, nil
}

// MemoryRecorder is an in-process Recorder for tests and single-node runs.
type MemoryRecorder struct {
	mu    sync.Mutex
	total int64
	seen  map[string]time.Time
	now   func() time.Time
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{seen: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRecorder) RecordVisit(_ context.Context, visitorID string, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if last, ok := m.seen[visitorID]; ok && now.Sub(last) < window {
		return false, nil
	}
	m.seen[visitorID] = now
	m.total++
	return true, nil
}

func (m *MemoryRecorder) VisitTotal(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total, nil
}
