package services

import (
	"context"
	"fmt"
	"time"

	"github.com/salary-parser/app/models"
	"github.com/salary-parser/internal/similarity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const unmappedValuesCollection = "unmapped_values"

// UnmappedStore counts raw phrases that no normalizer recognised, grouped by
// field and folded text.
type UnmappedStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewUnmappedStore opens the collection and ensures its indexes.
func NewUnmappedStore(db *mongo.Database, logger *zap.Logger) *UnmappedStore {
	collection := db.Collection(unmappedValuesCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "field", Value: 1}, {Key: "folded", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "family", Value: 1}, {Key: "usage_count", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("cannot create unmapped_values indexes", zap.Error(err))
	}
	return &UnmappedStore{collection: collection, logger: logger}
}

// Record bumps the usage counter of every unrecognised field of one post.
func (us *UnmappedStore) Record(ctx context.Context, source string, fields []models.UnrecognizedField) error {
	if len(fields) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(fields))
	for _, f := range fields {
		v := models.NewUnmappedValue(source, f, similarity.Fold(f.Raw))
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"field": v.Field, "folded": v.Folded}).
			SetUpdate(bson.M{
				"$inc": bson.M{"usage_count": 1},
				"$set": bson.M{"last_seen": v.LastSeen, "raw_text": v.RawText, "source": v.Source},
				"$setOnInsert": bson.M{
					"family":     v.Family,
					"created_at": v.CreatedAt,
				},
			}).
			SetUpsert(true))
	}

	if _, err := us.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("record unmapped values: %w", err)
	}
	return nil
}

// List returns the most frequent unmapped phrases. An empty family lists
// every family.
func (us *UnmappedStore) List(ctx context.Context, family string, minUsage, limit int) ([]models.UnmappedValue, error) {
	filter := bson.M{}
	if family != "" {
		filter["family"] = family
	}
	if minUsage > 1 {
		filter["usage_count"] = bson.M{"$gte": minUsage}
	}
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "usage_count", Value: -1}, {Key: "folded", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := us.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list unmapped values: %w", err)
	}
	defer cursor.Close(ctx)

	values := []models.UnmappedValue{}
	if err := cursor.All(ctx, &values); err != nil {
		return nil, fmt.Errorf("decode unmapped values: %w", err)
	}
	return values, nil
}

// Count returns the number of distinct unmapped phrases.
func (us *UnmappedStore) Count(ctx context.Context) (int64, error) {
	return us.collection.CountDocuments(ctx, bson.M{})
}
