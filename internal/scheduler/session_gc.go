package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

const (
	// DefaultSessionIdle is the inactivity after which a visitor's state is purged
	DefaultSessionIdle = 30 * 24 * time.Hour // 30 days
	// sessionBatch bounds the visitors purged per round trip
	sessionBatch = 500
)

// SessionStore lists and purges visitor namespaces by last activity.
type SessionStore interface {
	IdleSessions(ctx context.Context, before time.Time, limit int64) ([]string, error)
	PurgeSession(ctx context.Context, visitorID string) error
}

// SessionCollector handles cleanup of idle visitor state
type SessionCollector struct {
	store    SessionStore
	logger   logger.Logger
	interval time.Duration
	idle     time.Duration
	stopCh   chan struct{}
	now      func() time.Time
}

// NewSessionCollector creates a new session collector
func NewSessionCollector(
	store SessionStore,
	log logger.Logger,
	interval time.Duration,
	idle time.Duration,
) *SessionCollector {
	if idle == 0 {
		idle = DefaultSessionIdle
	}

	return &SessionCollector{
		store:    store,
		logger:   log,
		interval: interval,
		idle:     idle,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Run collects immediately and then on every tick until ctx is done or
// Stop is called
func (sc *SessionCollector) Run(ctx context.Context) error {
	if _, err := sc.Collect(ctx); err != nil {
		sc.logger.Warn("initial session collection failed", logger.Error(err))
	}

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := sc.Collect(ctx); err != nil {
				sc.logger.Error("session collection failed", logger.Error(err))
			}
		case <-sc.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop stops the session collector
func (sc *SessionCollector) Stop() {
	close(sc.stopCh)
}

// Collect purges every visitor idle for longer than the threshold and
// returns how many were removed. A failed purge is logged and skipped.
func (sc *SessionCollector) Collect(ctx context.Context) (int, error) {
	cutoff := sc.now().Add(-sc.idle)
	deleted := 0
	skipped := make(map[string]bool)

	for {
		limit := int64(sessionBatch + len(skipped))
		ids, err := sc.store.IdleSessions(ctx, cutoff, limit)
		if err != nil {
			return deleted, fmt.Errorf("failed to list idle sessions: %w", err)
		}

		progressed := false
		for _, id := range ids {
			if skipped[id] {
				continue
			}
			if err := sc.store.PurgeSession(ctx, id); err != nil {
				sc.logger.Warn("failed to purge session",
					logger.String("visitor_id", id),
					logger.Error(err))
				skipped[id] = true
				continue
			}
			deleted++
			progressed = true
		}

		if !progressed || int64(len(ids)) < limit {
			break
		}
	}

	if deleted > 0 {
		sc.logger.Info("session collection completed",
			logger.Int("purged", deleted),
			logger.Duration("idle_threshold", sc.idle))
	} else {
		sc.logger.Debug("no idle sessions to collect")
	}

	return deleted, nil
}
