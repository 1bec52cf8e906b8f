package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixVisitor is the prefix for per-visitor state hashes
	KeyPrefixVisitor = "appshelf:visitor:"
	// KeyPrefixVisitPing is the prefix for the per-visitor ping dedup markers
	KeyPrefixVisitPing = "appshelf:stats:ping:"
	// KeyCatalog is the key holding the last loaded catalog snapshot
	KeyCatalog = "appshelf:catalog"
	// KeyVisitsTotal is the global visit counter
	KeyVisitsTotal = "appshelf:stats:visits"
	// KeySessions is the sorted set of visitor IDs scored by last activity (unix seconds)
	KeySessions = "appshelf:sessions"
)

// VisitorKey returns the Redis key for a visitor's state hash
func VisitorKey(visitorID string) string {
	return KeyPrefixVisitor + visitorID
}

// VisitPingKey returns the Redis key marking a recent visit ping
func VisitPingKey(visitorID string) string {
	return KeyPrefixVisitPing + visitorID
}

// ExtractVisitorID extracts the visitor ID from a visitor state key
func ExtractVisitorID(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefixVisitor) || len(key) == len(KeyPrefixVisitor) {
		return "", fmt.Errorf("invalid visitor key: %s", key)
	}
	return key[len(KeyPrefixVisitor):], nil
}
