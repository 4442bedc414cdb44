package v1

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/nimsdash/authgate/internal/core/domain"
)

// maxAssetTTL caps how long one cache put may keep the asset. Re-fetching
// after expiry is the only way to extend it.
const maxAssetTTL = 6 * time.Hour

// LogoService serves the dashboard banner as a data URL, read-through cached
// so the blob store is not hit on every page load. It performs no
// authentication of its own.
type LogoService struct {
	blobs  domain.BlobStore
	cache  domain.Cache
	fileID string
	ttl    time.Duration
}

// NewLogoService creates a LogoService for the given asset id. ttl is
// clamped to the six hour ceiling; non-positive values use the ceiling.
func NewLogoService(blobs domain.BlobStore, cache domain.Cache, fileID string, ttl time.Duration) *LogoService {
	if ttl <= 0 || ttl > maxAssetTTL {
		ttl = maxAssetTTL
	}
	return &LogoService{
		blobs:  blobs,
		cache:  cache,
		fileID: fileID,
		ttl:    ttl,
	}
}

// GetLogoDataURL returns the banner as a data:<mime>;base64,<bytes> URL.
// On a cache hit the blob store is not touched; on a miss the asset is
// fetched, encoded, and cached. Blob store failures propagate to the caller.
func (s *LogoService) GetLogoDataURL(ctx context.Context) (string, error) {
	key := "logoDataUrl_" + s.fileID

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
		return string(cached), nil
	}

	data, contentType, err := s.blobs.Fetch(ctx, s.fileID)
	if err != nil {
		return "", fmt.Errorf("fetch logo %q: %w", s.fileID, err)
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)

	// Cache write is best-effort; the page still renders without it.
	_ = s.cache.Put(ctx, key, []byte(dataURL), s.ttl)

	return dataURL, nil
}
