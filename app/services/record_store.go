package services

import (
	"context"
	"fmt"
	"time"

	"github.com/salary-parser/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const canonicalRecordsCollection = "canonical_records"

// RecordStore persists canonical records, one document per fingerprint.
type RecordStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewRecordStore opens the collection and ensures its indexes.
func NewRecordStore(db *mongo.Database, logger *zap.Logger) *RecordStore {
	collection := db.Collection(canonicalRecordsCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "source", Value: 1}, {Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "result.status", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("cannot create canonical_records indexes", zap.Error(err))
	}
	return &RecordStore{collection: collection, logger: logger}
}

// Upsert stores doc, replacing any earlier parse of the same post. The
// first CreatedAt is kept.
func (rs *RecordStore) Upsert(ctx context.Context, doc *models.RecordDocument) error {
	filter := bson.M{"fingerprint": doc.Fingerprint}
	update := bson.M{
		"$set": bson.M{
			"source":         doc.Source,
			"external_id":    doc.ExternalID,
			"title":          doc.Title,
			"result":         doc.Result,
			"tables_version": doc.TablesVersion,
			"published_at":   doc.PublishedAt,
			"last_accessed":  doc.LastAccessed,
		},
		"$setOnInsert": bson.M{"created_at": doc.CreatedAt},
		"$inc":         bson.M{"access_count": 1},
	}
	_, err := rs.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", doc.Fingerprint, err)
	}
	return nil
}

// FindBySource returns the newest records of a source.
func (rs *RecordStore) FindBySource(ctx context.Context, source string, limit int) ([]models.RecordDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := rs.collection.Find(ctx, bson.M{"source": source}, opts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.RecordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return docs, nil
}

// Count returns the number of stored records.
func (rs *RecordStore) Count(ctx context.Context) (int64, error) {
	return rs.collection.CountDocuments(ctx, bson.M{})
}
