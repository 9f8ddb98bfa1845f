package blob

import (
	"context"
	"fmt"

	"chatbot-creator-be/internal/config"
)

// Storage writes opaque blobs and hands back a publicly reachable URL.
// Writes to an existing key overwrite it.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

func NewStorage(cfg config.StorageConfig, baseURL string) (Storage, error) {
	switch cfg.Provider {
	case "local":
		return NewLocalStorage(cfg.LocalDir, baseURL)
	case "s3":
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
