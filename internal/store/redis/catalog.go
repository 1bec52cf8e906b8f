package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
)

// catalogSnapshot is the JSON blob stored under KeyCatalog
type catalogSnapshot struct {
	SavedAt      time.Time             `json:"saved_at"`
	Applications []*domain.Application `json:"applications"`
}

// SaveCatalog stores the normalized catalog so a restart can serve it
// before the feed answers
func (s *Store) SaveCatalog(ctx context.Context, apps []*domain.Application) error {
	data, err := json.Marshal(catalogSnapshot{SavedAt: s.now(), Applications: apps})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := s.client.Set(ctx, KeyCatalog, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// LoadCatalog retrieves the last saved catalog. A missing snapshot returns
// an empty slice and a zero time.
func (s *Store) LoadCatalog(ctx context.Context) ([]*domain.Application, time.Time, error) {
	data, err := s.client.Get(ctx, KeyCatalog).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*domain.Application{}, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("failed to get catalog: %w", err)
	}

	var snap catalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return snap.Applications, snap.SavedAt, nil
}
