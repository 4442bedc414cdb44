package domain

import "context"

// BlobStore fetches raw asset bytes from external storage.
type BlobStore interface {
	// Fetch returns the asset's bytes and content type. Failures propagate
	// to the caller; they are not masked by the asset cache.
	Fetch(ctx context.Context, id string) (data []byte, contentType string, err error)
}
