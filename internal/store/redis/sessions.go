package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdleSessions returns up to limit visitor IDs whose last activity is
// older than before
func (s *Store) IdleSessions(ctx context.Context, before time.Time, limit int64) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, KeySessions, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "(" + strconv.FormatInt(before.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list idle sessions: %w", err)
	}
	return ids, nil
}

// PurgeSession deletes every key of a visitor
func (s *Store) PurgeSession(ctx context.Context, visitorID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, VisitorKey(visitorID), VisitPingKey(visitorID))
	pipe.ZRem(ctx, KeySessions, visitorID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to purge session %s: %w", visitorID, err)
	}
	return nil
}

// SessionCount returns the number of tracked visitors
func (s *Store) SessionCount(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, KeySessions).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
