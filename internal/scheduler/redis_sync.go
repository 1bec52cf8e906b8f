package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/index"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

// CatalogSnapshotter reads the last saved catalog.
type CatalogSnapshotter interface {
	LoadCatalog(ctx context.Context) ([]*domain.Application, time.Time, error)
}

// RedisSyncer warms the memory index from the Redis snapshot on startup
type RedisSyncer struct {
	store  CatalogSnapshotter
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store CatalogSnapshotter,
	idx *index.MemoryIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads the snapshot into the memory index. An absent snapshot leaves
// the index loading.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing catalog snapshot from redis to memory")

	apps, savedAt, err := rs.store.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog snapshot: %w", err)
	}

	if savedAt.IsZero() {
		rs.logger.Info("no catalog snapshot found in redis")
		return nil
	}

	rs.index.Update(apps)

	rs.logger.Info("synced catalog snapshot from redis",
		logger.Int("count", len(apps)),
		logger.Time("saved_at", savedAt))

	return nil
}
