package services

import (
	"context"
	"fmt"
	"time"

	"github.com/salary-parser/app/models"
	"github.com/salary-parser/internal/feed"
	"github.com/salary-parser/internal/parser"
	"go.uber.org/zap"
)

// RecordSink stores canonical records.
type RecordSink interface {
	Upsert(ctx context.Context, doc *models.RecordDocument) error
}

// UnmappedSink collects values no normalizer recognised.
type UnmappedSink interface {
	Record(ctx context.Context, source string, fields []models.UnrecognizedField) error
}

// RecordIndexer makes stored records searchable.
type RecordIndexer interface {
	AddRecords(docs []models.RecordDocument) (int, error)
}

// RunSummary counts what one ingestion run did.
type RunSummary struct {
	RunID    string        `json:"run_id"`
	Source   string        `json:"source"`
	Fetched  int           `json:"fetched"`
	Parsed   int           `json:"parsed"`
	Partial  int           `json:"partial"`
	Empty    int           `json:"empty"`
	Failed   int           `json:"failed"`
	Stored   int           `json:"stored"`
	Indexed  int           `json:"indexed"`
	Duration time.Duration `json:"duration"`
}

// IngestService runs feed items through the parser and into storage. Any
// sink may be nil, which skips that step (dry runs pass all three as nil).
type IngestService struct {
	parser   *parser.PostParser
	records  RecordSink
	unmapped UnmappedSink
	index    RecordIndexer
	logger   *zap.Logger
}

// NewIngestService wires the pipeline. Pass a literal nil, not a typed nil
// pointer, to skip a sink.
func NewIngestService(p *parser.PostParser, records RecordSink, unmapped UnmappedSink, index RecordIndexer, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		parser:   p,
		records:  records,
		unmapped: unmapped,
		index:    index,
		logger:   logger,
	}
}

// Ingest parses and stores items from source. A failing item is logged and
// counted, and the run goes on. When ctx ends the remaining items count as
// failed and the summary comes back with the context error.
func (is *IngestService) Ingest(ctx context.Context, runID, source string, items []feed.Item) (RunSummary, error) {
	start := time.Now()
	summary := RunSummary{RunID: runID, Source: source, Fetched: len(items)}
	log := is.logger.With(zap.String("run_id", runID), zap.String("source", source))

	var stopErr error
	toIndex := make([]models.RecordDocument, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			summary.Failed += len(items) - i
			stopErr = fmt.Errorf("ingest %s stopped after %d of %d items: %w", source, i, len(items), err)
			break
		}

		doc, err := is.ingestItem(ctx, source, item, &summary)
		if err != nil {
			summary.Failed++
			log.Warn("item failed", zap.String("item_id", item.ID), zap.Error(err))
			continue
		}
		toIndex = append(toIndex, *doc)
	}

	if is.index != nil && len(toIndex) > 0 {
		indexed, err := is.index.AddRecords(toIndex)
		if err != nil {
			log.Warn("indexing failed", zap.Error(err))
		}
		summary.Indexed = indexed
	}

	summary.Duration = time.Since(start)
	log.Info("ingest run finished",
		zap.Int("fetched", summary.Fetched),
		zap.Int("parsed", summary.Parsed),
		zap.Int("partial", summary.Partial),
		zap.Int("empty", summary.Empty),
		zap.Int("failed", summary.Failed),
		zap.Int("stored", summary.Stored),
		zap.Int("indexed", summary.Indexed),
		zap.Duration("duration", summary.Duration))
	return summary, stopErr
}

func (is *IngestService) ingestItem(ctx context.Context, source string, item feed.Item, summary *RunSummary) (*models.RecordDocument, error) {
	result, err := is.parser.ParsePost(ctx, source, item.Body)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case models.StatusParsed:
		summary.Parsed++
	case models.StatusPartial:
		summary.Partial++
	case models.StatusEmpty:
		summary.Empty++
	}

	doc := models.NewRecordDocument(*result, item.ID, item.Title)
	doc.PublishedAt = item.PublishedAt

	if is.records != nil {
		if err := is.records.Upsert(ctx, doc); err != nil {
			return nil, fmt.Errorf("store record: %w", err)
		}
		summary.Stored++
	}
	if is.unmapped != nil && len(result.Unrecognized) > 0 {
		if err := is.unmapped.Record(ctx, source, result.Unrecognized); err != nil {
			is.logger.Warn("cannot record unmapped values", zap.String("item_id", item.ID), zap.Error(err))
		}
	}
	return doc, nil
}
