package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/salary-parser/app/models"
)

type memEntry struct {
	result   *models.ParseResult
	storedAt time.Time
}

// CacheService is the in-memory TTL cache. It backs single-node deployments
// without Redis or Mongo.
type CacheService struct {
	entries map[string]memEntry
	mu      sync.RWMutex
	ttl     time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService creates an in-memory cache. ttl <= 0 keeps entries
// forever.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		entries: make(map[string]memEntry),
		ttl:     ttl,
	}
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.ParseResult, bool, error) {
	cs.mu.RLock()
	e, exists := cs.entries[key]
	cs.mu.RUnlock()

	if !exists || cs.isExpired(e) {
		if exists {
			cs.Delete(ctx, key)
		}
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return e.result, true, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, result *models.ParseResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.entries[key] = memEntry{result: result, storedAt: time.Now()}
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.entries, key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.entries = make(map[string]memEntry)
	cs.hits.Store(0)
	cs.misses.Store(0)
	return nil
}

func (cs *CacheService) InvalidateByTablesVersion(ctx context.Context, current string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key, e := range cs.entries {
		if e.result.TablesVersion != current {
			delete(cs.entries, key)
		}
	}
	return nil
}

// Size returns the number of stored entries, expired ones included.
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return len(cs.entries)
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := cs.hits.Load(), cs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(cs.Size()),
	}, nil
}

// CleanupExpired drops expired entries.
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key, e := range cs.entries {
		if cs.isExpired(e) {
			delete(cs.entries, key)
		}
	}
}

func (cs *CacheService) isExpired(e memEntry) bool {
	return cs.ttl > 0 && time.Since(e.storedAt) > cs.ttl
}

func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	e, exists := cs.entries[key]
	return exists && !cs.isExpired(e), nil
}

func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	e, exists := cs.entries[key]
	if !exists || cs.ttl <= 0 {
		return 0, nil
	}
	remaining := cs.ttl - time.Since(e.storedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// StartCleanupWorker drops expired entries every interval until ctx is done.
func (cs *CacheService) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

func (cs *CacheService) Close() error {
	return nil
}
