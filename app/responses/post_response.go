package responses

import (
	"github.com/salary-parser/app/models"
	"github.com/salary-parser/internal/extractor"
)

// ParsePostResponse wraps one parse result.
type ParsePostResponse struct {
	TablesVersion    string              `json:"tables_version"`
	Result           *models.ParseResult `json:"result"`
	ProcessingTimeMs int64               `json:"processing_time_ms"`
	CacheHit         bool                `json:"cache_hit"`
}

// BatchParseResponse acknowledges a queued batch.
type BatchParseResponse struct {
	JobID            string `json:"job_id"`
	EstimatedSeconds int    `json:"estimated_seconds"`
	TotalPosts       int    `json:"total_posts"`
	Message          string `json:"message"`
}

// JobStatusResponse reports batch progress.
type JobStatusResponse struct {
	JobID              string  `json:"job_id"`
	Status             string  `json:"status"`
	Progress           float64 `json:"progress"` // 0.0 - 1.0
	Processed          int     `json:"processed"`
	Failed             int     `json:"failed"`
	Total              int     `json:"total"`
	EstimatedRemaining int     `json:"estimated_remaining"` // seconds
	Message            string  `json:"message"`
}

// JobStatus constants
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// SectionsResponse lists the section diagnostics of a body.
type SectionsResponse struct {
	Source   string                    `json:"source"`
	Sections []extractor.SectionReport `json:"sections"`
}

// TranslateResponse is a place name rendered in a locale.
type TranslateResponse struct {
	Name       string `json:"name"`
	Locale     string `json:"locale"`
	Translated string `json:"translated"`
}

// SourceInfo describes one configured source.
type SourceInfo struct {
	ID       string   `json:"id"`
	Origin   string   `json:"origin"`
	Country  string   `json:"country"`
	Currency string   `json:"currency"`
	FeedURL  string   `json:"feed_url,omitempty"`
	Sections []string `json:"sections"`
	Fields   []string `json:"fields"`
}

// UnmappedListResponse lists raw phrases no normalizer recognised.
type UnmappedListResponse struct {
	Values []models.UnmappedValue `json:"values"`
	Total  int                    `json:"total"`
}
