package services

import (
	"context"
	"fmt"
	"time"

	"github.com/salary-parser/app/models"
	"go.uber.org/zap"
)

// HybridCacheService layers two caches: a fast L1 (Redis) in front of a
// persistent L2 (Mongo). Any ICacheService works in either slot.
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService combines l1 and l2.
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// Get tries L1, then L2; an L2 hit is copied back to L1 in the background.
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ParseResult, bool, error) {
	result, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("l1 cache failed, falling back to l2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := hcs.l1.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("cannot copy l2 hit to l1", zap.Error(err), zap.String("key", key))
		}
	}()

	return result, true, nil
}

// both runs op against both layers concurrently and joins their errors.
func (hcs *HybridCacheService) both(op string, fn func(ICacheService) error) error {
	errCh := make(chan error, 2)
	for _, c := range []ICacheService{hcs.l1, hcs.l2} {
		go func(c ICacheService) { errCh <- fn(c) }(c)
	}

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s errors: %v", op, errs)
	}
	return nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.ParseResult) error {
	return hcs.both("set", func(c ICacheService) error { return c.Set(ctx, key, result) })
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both("delete", func(c ICacheService) error { return c.Delete(ctx, key) })
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both("clear", func(c ICacheService) error { return c.Clear(ctx) }); err != nil {
		return err
	}
	hcs.logger.Info("hybrid cache cleared")
	return nil
}

func (hcs *HybridCacheService) InvalidateByTablesVersion(ctx context.Context, current string) error {
	err := hcs.both("invalidate", func(c ICacheService) error {
		return c.InvalidateByTablesVersion(ctx, current)
	})
	if err != nil {
		return err
	}
	hcs.logger.Info("hybrid cache invalidated", zap.String("tables_version", current))
	return nil
}

// GetStats adds up both layers; if one fails the other is reported alone.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	s1, err1 := hcs.l1.GetStats(ctx)
	s2, err2 := hcs.l2.GetStats(ctx)

	switch {
	case err1 != nil && err2 != nil:
		return nil, fmt.Errorf("both cache layers failed: %v, %v", err1, err2)
	case err1 != nil:
		return s2, nil
	case err2 != nil:
		return s1, nil
	}

	hits := s1.TotalHits + s2.TotalHits
	misses := s1.TotalMiss + s2.TotalMiss
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: s1.TotalItems + s2.TotalItems,
	}, nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("l1 exists failed, falling back to l2", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

// GetTTL reports the L1 lifetime; L2 keeps entries until invalidated.
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	return hcs.both("close", func(c ICacheService) error { return c.Close() })
}
