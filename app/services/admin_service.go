package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/salary-parser/app/models"
	"github.com/salary-parser/internal/search"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrIndexUnavailable is returned when no search index is configured.
var ErrIndexUnavailable = errors.New("search index not configured")

// AdminService backs the admin endpoints: index maintenance, stats and the
// unmapped-value report.
type AdminService struct {
	db        *mongo.Database
	index     *search.RecordIndex
	records   *RecordStore
	unmapped  *UnmappedStore
	logger    *zap.Logger
	startTime time.Time
}

// SystemStats is the process and storage summary.
type SystemStats struct {
	Uptime        string                 `json:"uptime"`
	MemoryUsage   map[string]interface{} `json:"memory_usage"`
	DatabaseStats DatabaseStats          `json:"database_stats"`
}

// DatabaseStats counts documents per collection.
type DatabaseStats struct {
	CanonicalRecords int64 `json:"canonical_records"`
	ParseCache       int64 `json:"parse_cache"`
	UnmappedValues   int64 `json:"unmapped_values"`
}

// NewAdminService wires the admin functions. index may be nil when
// Meilisearch is not deployed.
func NewAdminService(db *mongo.Database, index *search.RecordIndex, records *RecordStore, unmapped *UnmappedStore, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		db:        db,
		index:     index,
		records:   records,
		unmapped:  unmapped,
		logger:    logger,
		startTime: time.Now(),
	}
}

// BuildIndexes applies the search index settings.
func (as *AdminService) BuildIndexes() error {
	if as.index == nil {
		return ErrIndexUnavailable
	}
	if err := as.index.BuildIndexes(); err != nil {
		return fmt.Errorf("build search index: %w", err)
	}
	as.logger.Info("search indexes built")
	return nil
}

// ReindexSource pushes the newest stored records of source to the index.
func (as *AdminService) ReindexSource(ctx context.Context, source string, limit int) (int, error) {
	if as.index == nil {
		return 0, ErrIndexUnavailable
	}
	docs, err := as.records.FindBySource(ctx, source, limit)
	if err != nil {
		return 0, err
	}
	n, err := as.index.AddRecords(docs)
	if err != nil {
		return n, fmt.Errorf("reindex %s: %w", source, err)
	}
	as.logger.Info("source reindexed", zap.String("source", source), zap.Int("documents", n))
	return n, nil
}

// ListUnmapped returns the most frequent unrecognised phrases.
func (as *AdminService) ListUnmapped(ctx context.Context, family string, minUsage, limit int) ([]models.UnmappedValue, error) {
	return as.unmapped.List(ctx, family, minUsage, limit)
}

// GetSystemStats reports uptime, memory and collection sizes.
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	dbStats, err := as.getDatabaseStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("database stats: %w", err)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemStats{
		Uptime: time.Since(as.startTime).Round(time.Second).String(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
		DatabaseStats: *dbStats,
	}, nil
}

func (as *AdminService) getDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	counts := []struct {
		collection string
		dst        *int64
	}{
		{canonicalRecordsCollection, &stats.CanonicalRecords},
		{parseCacheCollection, &stats.ParseCache},
		{unmappedValuesCollection, &stats.UnmappedValues},
	}
	for _, c := range counts {
		n, err := as.db.Collection(c.collection).CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.collection, err)
		}
		*c.dst = n
	}
	return stats, nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
