package v1

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobStore struct {
	data        []byte
	contentType string
	err         error
	fetches     int
}

func (f *fakeBlobStore) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	f.fetches++
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.contentType, nil
}

func TestGetLogoDataURLReadThrough(t *testing.T) {
	blobs := &fakeBlobStore{data: []byte{0x89, 0x50, 0x4e, 0x47}, contentType: "image/png"}
	cache := newFakeCache(newFakeClock())
	svc := NewLogoService(blobs, cache, "logo-1", time.Hour)
	ctx := context.Background()

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(blobs.data)

	got, err := svc.GetLogoDataURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, blobs.fetches)

	// Hit: the blob store is not touched again.
	got, err = svc.GetLogoDataURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, blobs.fetches)

	cached, err := cache.Get(ctx, "logoDataUrl_logo-1")
	require.NoError(t, err)
	assert.Equal(t, want, string(cached))
}

func TestGetLogoDataURLRefetchesAfterExpiry(t *testing.T) {
	blobs := &fakeBlobStore{data: []byte("logo"), contentType: "image/svg+xml"}
	clock := newFakeClock()
	cache := newFakeCache(clock)
	svc := NewLogoService(blobs, cache, "logo-1", time.Hour)
	ctx := context.Background()

	_, err := svc.GetLogoDataURL(ctx)
	require.NoError(t, err)
	clock.Advance(time.Hour + time.Minute)

	_, err = svc.GetLogoDataURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, blobs.fetches)
}

func TestGetLogoDataURLTTLCeiling(t *testing.T) {
	blobs := &fakeBlobStore{data: []byte("logo"), contentType: "image/png"}
	ctx := context.Background()

	for _, ttl := range []time.Duration{0, -time.Minute, 24 * time.Hour} {
		cache := newFakeCache(newFakeClock())
		svc := NewLogoService(blobs, cache, "logo-1", ttl)
		_, err := svc.GetLogoDataURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, 6*time.Hour, cache.lastTTL, "ttl %v not clamped", ttl)
	}

	cache := newFakeCache(newFakeClock())
	svc := NewLogoService(blobs, cache, "logo-1", time.Hour)
	_, err := svc.GetLogoDataURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cache.lastTTL)
}

func TestGetLogoDataURLFetchFailurePropagates(t *testing.T) {
	blobs := &fakeBlobStore{err: errors.New("bucket unreachable")}
	svc := NewLogoService(blobs, newFakeCache(newFakeClock()), "logo-1", time.Hour)

	_, err := svc.GetLogoDataURL(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unreachable")
}
