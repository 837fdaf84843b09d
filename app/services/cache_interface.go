package services

import (
	"context"
	"time"

	"github.com/salary-parser/app/models"
)

// CacheStats summarises cache effectiveness.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService stores parse results by post fingerprint.
type ICacheService interface {
	// Get returns the cached result for key, if any.
	Get(ctx context.Context, key string) (*models.ParseResult, bool, error)

	// Set stores result under key.
	Set(ctx context.Context, key string, result *models.ParseResult) error

	// Delete drops key.
	Delete(ctx context.Context, key string) error

	// Clear drops every entry.
	Clear(ctx context.Context) error

	// InvalidateByTablesVersion drops every entry produced by tables other
	// than current.
	InvalidateByTablesVersion(ctx context.Context, current string) error

	// GetStats reports hits, misses and size.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists reports whether key is cached.
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL returns the remaining lifetime of key.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases connections, if any.
	Close() error
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
