package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecordVisit counts a visit unless visitorID already pinged within window.
// Reports whether the visit was counted.
func (s *Store) RecordVisit(ctx context.Context, visitorID string, window time.Duration) (bool, error) {
	if window <= 0 {
		window = DefaultPingWindow
	}

	fresh, err := s.client.SetNX(ctx, VisitPingKey(visitorID), s.now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark visit: %w", err)
	}
	if !fresh {
		return false, nil
	}

	if err := s.client.Incr(ctx, KeyVisitsTotal).Err(); err != nil {
		return false, fmt.Errorf("failed to increment visits: %w", err)
	}
	return true, nil
}

// VisitTotal returns the global visit counter
func (s *Store) VisitTotal(ctx context.Context) (int64, error) {
	n, err := s.client.Get(ctx, KeyVisitsTotal).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get visits: %w", err)
	}
	return n, nil
}
