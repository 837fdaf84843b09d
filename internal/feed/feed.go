// Package feed pulls community posts from RSS and Atom feeds.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/salary-parser/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRate is the request rate a fetcher starts with: one feed every two
// seconds, which community sites tolerate without a login.
const DefaultRate = 0.5

// Item is one feed entry reduced to what the parser needs.
type Item struct {
	ID          string
	Title       string
	Link        string
	Body        string
	PublishedAt *time.Time
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	parser  *gofeed.Parser
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFetcher builds a fetcher that identifies itself as userAgent and gives
// up on a single request after timeout.
func NewFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	p.Client = &http.Client{Timeout: timeout}
	return &Fetcher{
		parser:  p,
		limiter: rate.NewLimiter(rate.Limit(DefaultRate), 1),
		logger:  logger,
	}
}

// SetRate changes how many requests per second Fetch may issue. Zero or
// less removes the limit.
func (f *Fetcher) SetRate(perSecond float64) {
	if perSecond <= 0 {
		f.limiter.SetLimit(rate.Inf)
		return
	}
	f.limiter.SetLimit(rate.Limit(perSecond))
}

// Fetch downloads url and returns its items. Calls are throttled and safe
// for concurrent use. sourceID labels metrics and logs.
func (f *Fetcher) Fetch(ctx context.Context, sourceID, url string) ([]Item, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for feed slot: %w", err)
	}
	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	items := convert(parsed)
	metrics.FeedItemsFetchedTotal.WithLabelValues(sourceID).Add(float64(len(items)))
	f.logger.Info("feed fetched",
		zap.String("source", sourceID),
		zap.String("title", parsed.Title),
		zap.Int("items", len(items)))
	return items, nil
}

// Parse reads a feed document already in memory.
func (f *Fetcher) Parse(data string) ([]Item, error) {
	parsed, err := f.parser.ParseString(data)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return convert(parsed), nil
}

func convert(parsed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, normalizeItem(it))
	}
	return items
}

// normalizeItem prefers full content over the summary and converts its
// HTML to plain text with line breaks kept.
func normalizeItem(it *gofeed.Item) Item {
	item := Item{
		ID:    coalesce(it.GUID, it.Link),
		Title: strings.TrimSpace(it.Title),
		Link:  it.Link,
		Body:  HTMLToText(coalesce(it.Content, it.Description)),
	}
	switch {
	case it.PublishedParsed != nil:
		item.PublishedAt = it.PublishedParsed
	case it.UpdatedParsed != nil:
		item.PublishedAt = it.UpdatedParsed
	}
	return item
}

// coalesce returns the first non-blank value.
func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
