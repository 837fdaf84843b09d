package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/salary-parser/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const parseCacheCollection = "parse_cache"

// MongoCacheService is a persistent result cache: an in-process LRU in
// front of a Mongo collection keyed by fingerprint.
type MongoCacheService struct {
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.ParseResult]
	logger     *zap.Logger

	totalHits atomic.Int64
	totalMiss atomic.Int64
	l1Hits    atomic.Int64
	l1Miss    atomic.Int64
	mongoHits atomic.Int64
	mongoMiss atomic.Int64
}

// NewMongoCacheService creates the cache and its indexes. An index failure
// is logged, not returned.
func NewMongoCacheService(db *mongo.Database, l1Size int, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.ParseResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}

	collection := db.Collection(parseCacheCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tables_version", Value: 1}}},
		{Keys: bson.D{{Key: "last_accessed", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("cannot create parse_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
	}, nil
}

func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ParseResult, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		mcs.totalHits.Add(1)
		return result, true, nil
	}
	mcs.l1Miss.Add(1)

	var doc models.RecordDocument
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			mcs.mongoMiss.Add(1)
			mcs.totalMiss.Add(1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query parse cache: %w", err)
	}

	mcs.mongoHits.Add(1)
	mcs.totalHits.Add(1)

	go mcs.updateAccessStats(doc.ID)

	mcs.l1Cache.Add(key, &doc.Result)
	mcs.logger.Debug("mongo cache hit", zap.String("key", key))
	return &doc.Result, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.ParseResult) error {
	mcs.l1Cache.Add(key, result)

	doc := models.NewRecordDocument(*result, "", "")
	doc.Fingerprint = key

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"fingerprint": key}, doc, opts); err != nil {
		mcs.logger.Error("cannot store parse result", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("store parse result: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key}); err != nil {
		return fmt.Errorf("delete parse result: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear parse cache: %w", err)
	}

	for _, c := range []*atomic.Int64{&mcs.totalHits, &mcs.totalMiss, &mcs.l1Hits, &mcs.l1Miss, &mcs.mongoHits, &mcs.mongoMiss} {
		c.Store(0)
	}
	return nil
}

func (mcs *MongoCacheService) InvalidateByTablesVersion(ctx context.Context, current string) error {
	mcs.l1Cache.Purge()

	res, err := mcs.collection.DeleteMany(ctx, bson.M{"tables_version": bson.M{"$ne": current}})
	if err != nil {
		return fmt.Errorf("invalidate parse cache: %w", err)
	}

	mcs.logger.Info("mongo cache invalidated",
		zap.String("tables_version", current),
		zap.Int64("deleted_count", res.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count parse cache: %w", err)
	}

	hits, misses := mcs.totalHits.Load(), mcs.totalMiss.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"fingerprint": key})
	if err != nil {
		return false, fmt.Errorf("check parse cache: %w", err)
	}
	return count > 0, nil
}

// GetTTL is always zero: entries live until invalidated.
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close is a no-op; the Mongo client belongs to the caller.
func (mcs *MongoCacheService) Close() error {
	return nil
}

func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("cannot update access stats", zap.Error(err))
	}
}

// GetL1Stats breaks hits and misses down by layer.
func (mcs *MongoCacheService) GetL1Stats() map[string]interface{} {
	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    mcs.l1Hits.Load(),
		"l1_miss":    mcs.l1Miss.Load(),
		"mongo_hits": mcs.mongoHits.Load(),
		"mongo_miss": mcs.mongoMiss.Load(),
	}
}

// WarmUp loads the most accessed results into the LRU.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up parse cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var doc models.RecordDocument
		if err := cursor.Decode(&doc); err != nil {
			mcs.logger.Warn("cannot decode cached result during warm up", zap.Error(err))
			continue
		}
		result := doc.Result
		mcs.l1Cache.Add(doc.Fingerprint, &result)
		count++
	}

	mcs.logger.Info("parse cache warmed up",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return cursor.Err()
}
