package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache() (*MemoryCache, *testClock) {
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return newMemoryCache(clock.Now), clock
}

func TestMemoryCachePutGet(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", []byte("v"), time.Minute))

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	missing, err := cache.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryCacheExpiryIsAbsolute(t *testing.T) {
	cache, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", []byte("v"), time.Minute))

	clock.Advance(30 * time.Second)
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)

	// The read above must not have extended the entry.
	clock.Advance(31 * time.Second)
	got, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCachePutReplacesAndResetsExpiry(t *testing.T) {
	cache, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", []byte("old"), time.Minute))
	clock.Advance(50 * time.Second)
	require.NoError(t, cache.Put(ctx, "k", []byte("new"), time.Minute))

	clock.Advance(30 * time.Second)
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryCacheRemoveIdempotent(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, cache.Remove(ctx, "k"))
	require.NoError(t, cache.Remove(ctx, "k"))
	require.NoError(t, cache.Remove(ctx, "never-stored"))

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCacheValueIsCopied(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	v := []byte("original")
	require.NoError(t, cache.Put(ctx, "k", v, time.Minute))
	v[0] = 'X'

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestMemoryCachePurgeExpired(t *testing.T) {
	cache, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, cache.Put(ctx, "long", []byte("b"), time.Hour))

	clock.Advance(2 * time.Minute)
	cache.purgeExpired()

	cache.mu.RLock()
	_, shortOK := cache.entries["short"]
	_, longOK := cache.entries["long"]
	cache.mu.RUnlock()

	assert.False(t, shortOK)
	assert.True(t, longOK)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k-%d", i)
			value := []byte(fmt.Sprintf("v-%d", i))
			if err := cache.Put(ctx, key, value, time.Minute); err != nil {
				t.Errorf("put %s: %v", key, err)
				return
			}
			got, err := cache.Get(ctx, key)
			if err != nil || string(got) != string(value) {
				t.Errorf("get %s = %q, %v", key, got, err)
			}
			if i%2 == 0 {
				_ = cache.Remove(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}
