package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/index"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/sources/sheet"
)

// FeedLoader fetches the raw spreadsheet rows, header excluded.
type FeedLoader interface {
	Load(ctx context.Context) ([][]string, error)
	Location() string
}

// CatalogSaver persists a catalog snapshot for warm starts.
type CatalogSaver interface {
	SaveCatalog(ctx context.Context, apps []*domain.Application) error
}

// CatalogReloader handles periodic reloading of the catalog feed
type CatalogReloader struct {
	loader        FeedLoader
	mapper        *sheet.Mapper
	store         CatalogSaver
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger <-chan struct{}
}

// NewCatalogReloader creates a new catalog reloader. store may be nil.
func NewCatalogReloader(
	loader FeedLoader,
	store CatalogSaver,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        loader,
		mapper:        sheet.NewMapper(),
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Run loads the feed immediately, then on every tick or manual trigger,
// until ctx is done or Stop is called. Load failures are logged and the
// schedule continues.
func (cr *CatalogReloader) Run(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Error("initial catalog load failed", logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := cr.Reload(ctx); err != nil {
				cr.logger.Error("failed to reload catalog", logger.Error(err))
			}
		case <-cr.manualTrigger:
			cr.logger.Info("manual reload triggered")
			if err := cr.Reload(ctx); err != nil {
				cr.logger.Error("failed to reload catalog", logger.Error(err))
			}
		case <-cr.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload fetches the feed, normalizes it and replaces the index. On failure
// the index keeps its previous snapshot, or turns failed if it had none.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	cr.logger.Info("reloading catalog", logger.String("feed", cr.loader.Location()))
	start := time.Now()

	rows, err := cr.loader.Load(ctx)
	if err != nil {
		cr.index.MarkFailed(err)
		return fmt.Errorf("failed to load feed: %w", err)
	}

	res := cr.mapper.MapApplications(rows)
	cr.index.Update(res.Applications)

	cr.logger.Info("catalog loaded",
		logger.Int("rows", res.Rows),
		logger.Int("applications", len(res.Applications)),
		logger.Int("dropped", res.Dropped),
		logger.Duration("took", time.Since(start)))

	// Update Redis snapshot (best effort)
	if cr.store != nil {
		if err := cr.store.SaveCatalog(ctx, res.Applications); err != nil {
			cr.logger.Warn("failed to save catalog snapshot to redis",
				logger.Error(err))
			// Don't fail - memory index is the primary source
		}
	}

	return nil
}
