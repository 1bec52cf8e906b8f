package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/appshelf/internal/localstate"
)

// VisitorKV is the persisted key-value namespace of one visitor, stored as a
// Redis hash. Every write refreshes the hash TTL and the visitor's activity
// score in the sessions set.
type VisitorKV struct {
	store     *Store
	visitorID string
}

// For returns the namespace of visitorID. It makes Store a localstate.Provider.
func (s *Store) For(visitorID string) localstate.KV {
	return &VisitorKV{store: s, visitorID: visitorID}
}

// Get reads one field, returning localstate.ErrNotFound when absent
func (v *VisitorKV) Get(ctx context.Context, key string) (string, error) {
	val, err := v.store.client.HGet(ctx, VisitorKey(v.visitorID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", localstate.ErrNotFound
		}
		return "", fmt.Errorf("failed to get visitor state %s: %w", key, err)
	}
	return val, nil
}

// Set writes one field
func (v *VisitorKV) Set(ctx context.Context, key, value string) error {
	hash := VisitorKey(v.visitorID)

	pipe := v.store.client.TxPipeline()
	pipe.HSet(ctx, hash, key, value)
	pipe.Expire(ctx, hash, v.store.stateTTL)
	pipe.ZAdd(ctx, KeySessions, redis.Z{
		Score:  float64(v.store.now().Unix()),
		Member: v.visitorID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save visitor state %s: %w", key, err)
	}
	return nil
}

// Delete removes one field
func (v *VisitorKV) Delete(ctx context.Context, key string) error {
	if err := v.store.client.HDel(ctx, VisitorKey(v.visitorID), key).Err(); err != nil {
		return fmt.Errorf("failed to delete visitor state %s: %w", key, err)
	}
	return nil
}
