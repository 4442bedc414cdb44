package domain

import (
	"context"
	"time"
)

// Cache is a key-value store with per-entry TTL. It backs both session
// tokens and the asset cache. Expiry is absolute: reads never extend an
// entry's lifetime. Implementations must be safe for concurrent use by many
// request handlers.
type Cache interface {
	// Put stores value under key, replacing any prior entry and resetting
	// its expiry to now+ttl.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the stored value, or (nil, nil) when the key is unknown
	// or its TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Remove deletes the entry for key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
}
