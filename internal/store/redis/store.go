package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultStateTTL is how long an untouched visitor hash survives (90 days)
	DefaultStateTTL = 90 * 24 * time.Hour
	// DefaultPingWindow is the dedup window of visit pings (15 minutes)
	DefaultPingWindow = 15 * time.Minute
)

// Store handles Redis operations for visitor state, the catalog snapshot
// and visit statistics
type Store struct {
	client   *redis.Client
	stateTTL time.Duration
	now      func() time.Time
}

// NewStore creates a new Redis store. A zero stateTTL uses DefaultStateTTL.
func NewStore(client *redis.Client, stateTTL time.Duration) *Store {
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}
	return &Store{
		client:   client,
		stateTTL: stateTTL,
		now:      time.Now,
	}
}
