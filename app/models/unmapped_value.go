package models

import (
	"time"
)

// UnmappedValue counts how often a raw phrase fell through every matcher of
// a field. Admins use it to grow the mapping tables.
type UnmappedValue struct {
	Field      string    `bson:"field" json:"field"`
	Family     string    `bson:"family,omitempty" json:"family,omitempty"`
	RawText    string    `bson:"raw_text" json:"raw_text"`
	Folded     string    `bson:"folded" json:"folded"`
	Source     string    `bson:"source" json:"source"`
	UsageCount int       `bson:"usage_count" json:"usage_count"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	LastSeen   time.Time `bson:"last_seen" json:"last_seen"`
}

// NewUnmappedValue records a first sighting.
func NewUnmappedValue(source string, field UnrecognizedField, folded string) *UnmappedValue {
	now := time.Now()
	return &UnmappedValue{
		Field:      field.Field,
		Family:     field.Family,
		RawText:    field.Raw,
		Folded:     folded,
		Source:     source,
		UsageCount: 1,
		CreatedAt:  now,
		LastSeen:   now,
	}
}

// UpdateUsage records another sighting.
func (u *UnmappedValue) UpdateUsage() {
	u.UsageCount++
	u.LastSeen = time.Now()
}

// IsFrequent reports whether the phrase showed up at least threshold times.
func (u *UnmappedValue) IsFrequent(threshold int) bool {
	return u.UsageCount >= threshold
}
