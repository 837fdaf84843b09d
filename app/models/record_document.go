package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordDocument is a stored parse result, keyed by its fingerprint. It
// backs both the canonical record store and the Mongo result cache.
type RecordDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint   string             `bson:"fingerprint" json:"fingerprint"`
	Source        string             `bson:"source" json:"source"`
	ExternalID    string             `bson:"external_id,omitempty" json:"external_id,omitempty"` // feed item guid or link
	Title         string             `bson:"title,omitempty" json:"title,omitempty"`
	Result        ParseResult        `bson:"result" json:"result"`
	TablesVersion string             `bson:"tables_version" json:"tables_version"`
	PublishedAt   *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed  time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount   int                `bson:"access_count" json:"access_count"`
}

// NewRecordDocument wraps result for storage.
func NewRecordDocument(result ParseResult, externalID, title string) *RecordDocument {
	now := time.Now()
	return &RecordDocument{
		Fingerprint:   result.Fingerprint,
		Source:        result.Source,
		ExternalID:    externalID,
		Title:         title,
		Result:        result,
		TablesVersion: result.TablesVersion,
		CreatedAt:     now,
		LastAccessed:  now,
		AccessCount:   1,
	}
}

// UpdateAccess records a cache hit.
func (d *RecordDocument) UpdateAccess() {
	d.LastAccessed = time.Now()
	d.AccessCount++
}

// IsExpired reports whether the document is older than ttl.
func (d *RecordDocument) IsExpired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(d.CreatedAt) > ttl
}

// IsValidTablesVersion reports whether the document was produced by the
// current normalization tables.
func (d *RecordDocument) IsValidTablesVersion(current string) bool {
	return d.TablesVersion == current
}
