package repository

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// MemoryCache is an in-process implementation of domain.Cache. Expiry is
// absolute: reads never extend an entry's lifetime. Expired entries are
// dropped lazily on access and by a background sweep; entries do not survive
// a process restart.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a MemoryCache and starts its sweep goroutine.
// Call Close to stop the sweep.
func NewMemoryCache() *MemoryCache {
	c := newMemoryCache(time.Now)
	go c.sweep(defaultSweepInterval)
	return c
}

func newMemoryCache(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Put stores value under key, replacing any prior entry and resetting its
// expiry to now+ttl.
func (c *MemoryCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: v, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Get returns the stored value, or (nil, nil) when the key is unknown or its
// TTL has elapsed. An expired entry is dropped on the spot.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// replaced the entry with a live one.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, nil
	}

	v := make([]byte, len(e.value))
	copy(v, e.value)
	return v, nil
}

// Remove deletes the entry for key. Removing an absent key is a no-op.
func (c *MemoryCache) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Close stops the background sweep. Safe to call more than once.
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.purgeExpired()
		}
	}
}

func (c *MemoryCache) purgeExpired() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
