package storage

import (
	"context"
	"io"
)

// ObjectStorage stores published artifacts such as sitemaps.
type ObjectStorage interface {
	// Upload writes an object, replacing any existing one under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the public URL of an object.
	GetURL(key string) string
}
