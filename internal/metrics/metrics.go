// Package metrics provides Prometheus metrics for the salary parser.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsParsedTotal tracks parsed posts by source and status
	PostsParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salary_parser",
			Subsystem: "pipeline",
			Name:      "posts_parsed_total",
			Help:      "Total number of posts parsed by source and status",
		},
		[]string{"source", "status"},
	)

	// PostParseDuration tracks time spent parsing one post
	PostParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salary_parser",
			Subsystem: "pipeline",
			Name:      "post_parse_duration_seconds",
			Help:      "Duration of single post parsing in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		},
		[]string{"source"},
	)

	// NullFieldsTotal tracks fields that ended up null
	NullFieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salary_parser",
			Subsystem: "pipeline",
			Name:      "null_fields_total",
			Help:      "Total number of null fields by source, field and reason",
		},
		[]string{"source", "field", "reason"},
	)

	// OrphanedCommentsTotal tracks comments left out of rebuilt trees
	OrphanedCommentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salary_parser",
			Subsystem: "comments",
			Name:      "orphaned_total",
			Help:      "Total number of comments excluded from trees",
		},
	)

	// CacheRequestsTotal tracks result cache lookups
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salary_parser",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Total number of result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// FeedItemsFetchedTotal tracks items pulled from community feeds
	FeedItemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salary_parser",
			Subsystem: "worker",
			Name:      "feed_items_fetched_total",
			Help:      "Total number of feed items fetched by source",
		},
		[]string{"source"},
	)

	// JobsInFlight tracks batch jobs currently running
	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salary_parser",
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Number of batch jobs currently running",
		},
	)
)

// Null field reasons.
const (
	ReasonMissing      = "missing"
	ReasonUnrecognized = "unrecognized"
)
