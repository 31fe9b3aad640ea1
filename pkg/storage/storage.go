// Package storage provides bucket-addressed blob storage with Azure Blob
// Storage and S3-compatible implementations.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/folio/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
// Buckets map to Azure containers or S3 buckets.
type System interface {
	// Start registers a startup hook that verifies or creates the configured buckets.
	Start(lc *lifecycle.Coordinator) error
	// Exists reports whether a blob exists at bucket/key.
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// Get returns the full contents of the blob. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Put writes data to bucket/key with the given content type, replacing any existing blob.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// Delete removes the blob. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, bucket, key string) error
	// DeletePrefix removes every blob whose key starts with prefix and returns the count removed.
	DeletePrefix(ctx context.Context, bucket, prefix string) (int, error)
	// SignedURL returns a time-limited URL granting read access to the blob.
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// New creates the storage system for the configured provider.
// Clients are constructed but no network calls are made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderS3:
		return newS3(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Provider)
	}
}

// ValidateKey checks bucket and key before they are sent to a provider.
func ValidateKey(bucket, key string) error {
	if bucket == "" {
		return ErrEmptyBucket
	}
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
