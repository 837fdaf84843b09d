package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/salary-parser/app/models"
	"go.uber.org/zap"
)

// RedisCacheService caches parse results in Redis as JSON. Every key is
// also added to a per-tables-version set so stale versions can be dropped
// without scanning values.
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService connects to redisURL and pings it.
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "salary_parser:",
		ttl:    ttl,
	}, nil
}

func (rcs *RedisCacheService) resultKey(key string) string {
	return rcs.prefix + "result:" + key
}

func (rcs *RedisCacheService) versionKey(version string) string {
	return rcs.prefix + "version:" + version
}

func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.ParseResult, bool, error) {
	val, err := rcs.client.Get(ctx, rcs.resultKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("redis get failed", zap.Error(err), zap.String("key", key))
		return nil, false, err
	}

	var result models.ParseResult
	if err := json.Unmarshal(val, &result); err != nil {
		rcs.logger.Error("cached result is not valid JSON", zap.Error(err), zap.String("key", key))
		return nil, false, err
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("redis cache hit", zap.String("key", key))
	return &result, true, nil
}

func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.ParseResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cached result: %w", err)
	}

	pipe := rcs.client.TxPipeline()
	pipe.Set(ctx, rcs.resultKey(key), data, rcs.ttl)
	pipe.SAdd(ctx, rcs.versionKey(result.TablesVersion), key)
	if _, err := pipe.Exec(ctx); err != nil {
		rcs.logger.Error("redis set failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	if err := rcs.client.Del(ctx, rcs.resultKey(key)).Err(); err != nil {
		rcs.logger.Error("redis delete failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

// scanKeys walks the keyspace with SCAN rather than KEYS so large caches do
// not block the server.
func (rcs *RedisCacheService) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := rcs.client.Scan(ctx, 0, pattern, 500).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return keys, nil
}

func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	keys, err := rcs.scanKeys(ctx, rcs.prefix+"*")
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
	}
	rcs.hits.Store(0)
	rcs.misses.Store(0)

	rcs.logger.Info("redis cache cleared", zap.Int("keys_deleted", len(keys)))
	return nil
}

func (rcs *RedisCacheService) InvalidateByTablesVersion(ctx context.Context, current string) error {
	sets, err := rcs.scanKeys(ctx, rcs.versionKey("*"))
	if err != nil {
		return err
	}

	deleted := 0
	for _, set := range sets {
		if strings.TrimPrefix(set, rcs.versionKey("")) == current {
			continue
		}
		members, err := rcs.client.SMembers(ctx, set).Result()
		if err != nil {
			return fmt.Errorf("read %s: %w", set, err)
		}
		keys := make([]string, 0, len(members)+1)
		for _, m := range members {
			keys = append(keys, rcs.resultKey(m))
		}
		keys = append(keys, set)
		if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete stale results: %w", err)
		}
		deleted += len(members)
	}

	rcs.logger.Info("redis cache invalidated",
		zap.String("tables_version", current),
		zap.Int("deleted_count", deleted))
	return nil
}

func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	keys, err := rcs.scanKeys(ctx, rcs.resultKey("*"))
	if err != nil {
		rcs.logger.Warn("cannot count redis keys", zap.Error(err))
	}

	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(len(keys)),
	}, nil
}

func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rcs.client.Exists(ctx, rcs.resultKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rcs.client.TTL(ctx, rcs.resultKey(key)).Result()
}

func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
