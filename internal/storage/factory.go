package storage

import (
	"strings"

	"github.com/timmy/contentfactory/internal/config"
)

// NewStorage creates an ObjectStorage from configuration. The storage type is
// detected from the endpoint when not given.
func NewStorage(cfg *config.StorageConfig) (*S3Storage, error) {
	s3cfg := &S3Config{
		Type:      StorageType(cfg.Type),
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,

		CacheControl: cfg.CacheControl,
	}
	if s3cfg.Type == "" {
		s3cfg.Type = detectStorageType(cfg.Endpoint)
	}
	return NewS3Storage(s3cfg)
}

func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
