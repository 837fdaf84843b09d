package search

import (
	"fmt"

	"github.com/meilisearch/meilisearch-go"
	"github.com/salary-parser/app/models"
	"go.uber.org/zap"
)

// IndexConfig points at a Meilisearch instance.
type IndexConfig struct {
	Host      string
	APIKey    string
	IndexName string
	BatchSize int
}

// RecordIndex mirrors canonical records into a Meilisearch index so
// dashboards can filter salaries by sector, city and the like.
type RecordIndex struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	batchSize int
}

// Indexed attributes.
var (
	searchableAttrs = []string{"job_title", "sector", "work_city", "education", "title"}
	filterableAttrs = []string{
		"source", "country", "status", "tables_version",
		"sector", "education", "company_size", "contract_type",
		"work_arrangement", "work_city", "seniority",
		"gross_salary", "age",
	}
	sortableAttrs = []string{"gross_salary", "net_salary", "age", "published_at"}
)

// NewRecordIndex connects to Meilisearch and checks it is healthy.
func NewRecordIndex(cfg IndexConfig, logger *zap.Logger) (*RecordIndex, error) {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("connect meilisearch: %w", err)
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "canonical_records"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}

	return &RecordIndex{
		client:    client,
		logger:    logger,
		indexName: cfg.IndexName,
		batchSize: cfg.BatchSize,
	}, nil
}

// BuildIndexes applies the index settings.
func (ri *RecordIndex) BuildIndexes() error {
	index := ri.client.Index(ri.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: searchableAttrs,
		FilterableAttributes: filterableAttrs,
		SortableAttributes:   sortableAttrs,
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  4,
				TwoTypos: 8,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configure index: %w", err)
	}

	ri.logger.Info("record index configured",
		zap.String("index", ri.indexName),
		zap.Int64("task_uid", task.TaskUID))
	return nil
}

// AddRecords indexes docs in batches. Failed and unkeyed results are skipped; the
// number of indexed documents is returned.
func (ri *RecordIndex) AddRecords(docs []models.RecordDocument) (int, error) {
	documents := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		if d.Result.Status == models.StatusFailed || d.Fingerprint == "" {
			continue
		}
		documents = append(documents, ToDocument(d))
	}
	if len(documents) == 0 {
		return 0, nil
	}

	index := ri.client.Index(ri.indexName)
	for i := 0; i < len(documents); i += ri.batchSize {
		end := i + ri.batchSize
		if end > len(documents) {
			end = len(documents)
		}

		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return i, fmt.Errorf("add documents %d-%d: %w", i, end, err)
		}
		ri.logger.Debug("record batch queued",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	ri.logger.Info("records indexed", zap.Int("total_documents", len(documents)))
	return len(documents), nil
}

// Search runs a filtered query and returns the raw hits.
func (ri *RecordIndex) Search(query, filter string, limit int) ([]map[string]interface{}, error) {
	if limit <= 0 {
		limit = 20
	}
	req := &meilisearch.SearchRequest{Limit: int64(limit)}
	if filter != "" {
		req.Filter = filter
	}

	result, err := ri.client.Index(ri.indexName).Search(query, req)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}

	hits := make([]map[string]interface{}, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if m, ok := hit.(map[string]interface{}); ok {
			hits = append(hits, m)
		}
	}
	return hits, nil
}

// ToDocument flattens a stored record into an index document: metadata plus
// one attribute per canonical field, null fields included.
func ToDocument(d models.RecordDocument) map[string]interface{} {
	doc := d.Result.Record.Map()
	doc["id"] = d.Fingerprint
	doc["source"] = d.Source
	doc["country"] = d.Result.Country
	doc["currency"] = d.Result.Currency
	doc["status"] = d.Result.Status
	doc["tables_version"] = d.TablesVersion
	if d.Title != "" {
		doc["title"] = d.Title
	}
	if d.ExternalID != "" {
		doc["external_id"] = d.ExternalID
	}
	if d.PublishedAt != nil {
		doc["published_at"] = d.PublishedAt.Unix()
	}
	return doc
}
