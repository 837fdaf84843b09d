// Package parser turns a raw community post into a canonical record by
// routing every extracted field to its normalizer.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/salary-parser/app/models"
	"github.com/salary-parser/helpers/utils"
	"github.com/salary-parser/internal/extractor"
	"github.com/salary-parser/internal/location"
	"github.com/salary-parser/internal/measure"
	"github.com/salary-parser/internal/metrics"
	"github.com/salary-parser/internal/normalizer"
	"go.uber.org/zap"
)

// ErrEmptyBody is returned for a body with nothing but whitespace or
// invisible characters.
var ErrEmptyBody = errors.New("post body is empty")

// Options bounds the plausibility checks.
type Options struct {
	MinAge      int
	MaxAge      int
	MaxDistance float64
}

// DefaultOptions matches the normalizer defaults.
func DefaultOptions() Options {
	return Options{
		MinAge:      normalizer.MinAge,
		MaxAge:      normalizer.MaxAge,
		MaxDistance: measure.MaxDistance,
	}
}

// PostParser is the extraction and normalization pipeline. It holds only
// read-only tables and is safe for concurrent use.
type PostParser struct {
	registry   *extractor.Registry
	normalizer *normalizer.Normalizer
	resolver   *location.Resolver
	distance   *measure.Extractor
	opts       Options
	settings   string
	logger     *zap.Logger
}

// NewPostParser wires the pipeline. resolver may be nil, in which case
// cities are kept as cleaned text.
func NewPostParser(registry *extractor.Registry, norm *normalizer.Normalizer, resolver *location.Resolver, opts Options, logger *zap.Logger) *PostParser {
	def := DefaultOptions()
	if opts.MinAge <= 0 {
		opts.MinAge = def.MinAge
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = def.MaxAge
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = def.MaxDistance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostParser{
		registry:   registry,
		normalizer: norm,
		resolver:   resolver,
		distance:   measure.NewExtractor(opts.MaxDistance),
		opts:       opts,
		settings:   settingsKey(norm, resolver, opts),
		logger:     logger,
	}
}

// settingsKey renders every tuning knob that changes a parse result, so
// results cached under other settings are never served.
func settingsKey(norm *normalizer.Normalizer, resolver *location.Resolver, opts Options) string {
	no := norm.Options()
	key := fmt.Sprintf("threshold=%g;substring=%d;age=%d-%d;distance=%g",
		no.Threshold, no.MinSubstringLen, opts.MinAge, opts.MaxAge, opts.MaxDistance)
	if resolver != nil {
		key += fmt.Sprintf(";city=%g", resolver.Options().MinScore)
	} else {
		key += ";city=off"
	}
	return key
}

// Registry exposes the source table.
func (p *PostParser) Registry() *extractor.Registry {
	return p.registry
}

// Source looks up a source by a user-supplied id such as " BESalary ".
func (p *PostParser) Source(id string) (*extractor.SourceConfig, error) {
	return p.registry.Get(normalizeSourceID(id))
}

// TablesVersion identifies the normalization tables results depend on.
func (p *PostParser) TablesVersion() string {
	return p.normalizer.Tables().Version()
}

// Settings describes the tuning the parser runs with.
func (p *PostParser) Settings() string {
	return p.settings
}

// Fingerprint is the cache and storage key of a post. It covers the tables
// version and the tuning, so changing either gives new keys.
func (p *PostParser) Fingerprint(sourceID, body string) string {
	return p.fingerprint(normalizeSourceID(sourceID), extractor.CleanBody(body))
}

func (p *PostParser) fingerprint(sourceID, clean string) string {
	return utils.Fingerprint(sourceID, clean, p.TablesVersion(), p.settings)
}

// ParsePost extracts and normalizes one post. Every configured field gets
// exactly one value; fields that were not stated or not recognised are null.
// Only an unknown source, an empty body or a done context are errors.
func (p *PostParser) ParsePost(ctx context.Context, sourceID, body string) (*models.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := p.Source(sourceID)
	if err != nil {
		return nil, err
	}
	clean := extractor.CleanBody(body)
	if clean == "" {
		return nil, ErrEmptyBody
	}

	start := time.Now()
	result := &models.ParseResult{
		Source:        src.ID,
		Country:       src.CountryTag,
		Currency:      src.CurrencyTag,
		Fingerprint:   p.fingerprint(src.ID, clean),
		TablesVersion: p.TablesVersion(),
		Unrecognized:  []models.UnrecognizedField{},
	}

	stated, recognised := 0, 0
	for _, raw := range extractor.Extract(clean, src) {
		spec := FieldFor(raw.Name)
		if raw.Text == nil {
			result.Record.Set(raw.Name, models.Null())
			metrics.NullFieldsTotal.WithLabelValues(src.ID, raw.Name, metrics.ReasonMissing).Inc()
			continue
		}

		stated++
		v, ok := p.normalizeField(spec, *raw.Text, src)
		result.Record.Set(raw.Name, v)
		if ok {
			recognised++
			continue
		}
		result.Unrecognized = append(result.Unrecognized, models.UnrecognizedField{
			Field:  raw.Name,
			Family: spec.Family,
			Raw:    *raw.Text,
		})
		if v.IsNull() {
			metrics.NullFieldsTotal.WithLabelValues(src.ID, raw.Name, metrics.ReasonUnrecognized).Inc()
		}
	}

	for _, s := range extractor.DetectSections(clean, src) {
		if !s.Found {
			result.MissingSections = append(result.MissingSections, s.Title)
		}
	}

	switch {
	case recognised == 0:
		result.Status = models.StatusEmpty
	case recognised < stated:
		result.Status = models.StatusPartial
	default:
		result.Status = models.StatusParsed
	}

	metrics.PostsParsedTotal.WithLabelValues(src.ID, result.Status).Inc()
	metrics.PostParseDuration.WithLabelValues(src.ID).Observe(time.Since(start).Seconds())
	p.logger.Debug("post parsed",
		zap.String("source", src.ID),
		zap.String("fingerprint", result.Fingerprint),
		zap.String("status", result.Status),
		zap.Int("stated", stated),
		zap.Int("recognised", recognised))

	return result, nil
}

// normalizeField applies the field's normalizer. ok is false when the
// stated text was not recognised; v is then null, except for an unresolved
// city which is kept as cleaned text.
func (p *PostParser) normalizeField(spec FieldSpec, text string, src *extractor.SourceConfig) (models.Value, bool) {
	switch spec.Kind {
	case KindAge:
		if age, ok := normalizer.AgeWithin(text, p.opts.MinAge, p.opts.MaxAge); ok {
			return models.Integer(age), true
		}
	case KindExperience:
		if years, ok := normalizer.Experience(text); ok {
			return models.Integer(years), true
		}
	case KindInteger:
		if n, ok := normalizer.Integer(text, spec.Min, spec.Max); ok {
			return models.Integer(n), true
		}
	case KindMoney:
		if n, ok := normalizer.Money(text, spec.Min, spec.Max); ok {
			return models.Integer(n), true
		}
	case KindBool:
		if b, ok := p.normalizer.Bool(text); ok {
			return models.Boolean(b), true
		}
	case KindFamily:
		if tag, ok := p.normalizer.NormalizeFamily(text, spec.Family); ok {
			return models.String(tag), true
		}
	case KindCompanySize:
		if tag, ok := p.normalizer.CompanySize(text); ok {
			return models.String(tag), true
		}
	case KindWorkArrangement:
		if tag, ok := p.normalizer.WorkArrangement(text); ok {
			return models.String(tag), true
		}
	case KindDistance:
		if d, ok := p.distance.Extract(text); ok {
			return models.String(d), true
		}
	case KindCity:
		return p.city(text, src)
	default:
		if s, ok := normalizer.CleanText(text); ok {
			return models.String(s), true
		}
	}
	return models.Null(), false
}

func (p *PostParser) city(text string, src *extractor.SourceConfig) (models.Value, bool) {
	if p.resolver != nil {
		if e, ok := p.resolver.ResolveCity(text, src.CountryTag); ok {
			return models.String(e.Name), true
		}
	}
	cleaned, ok := normalizer.CleanText(text)
	if !ok {
		return models.Null(), false
	}
	return models.String(cleaned), p.resolver == nil
}

// ParsePosts parses bodies one after another. A failing item is recorded as
// a failed result and the batch goes on. When ctx is done the remaining
// items are marked failed and ctx's error is returned with the results.
func (p *PostParser) ParsePosts(ctx context.Context, sourceID string, bodies []string) ([]*models.ParseResult, error) {
	sourceID = normalizeSourceID(sourceID)
	if _, err := p.registry.Get(sourceID); err != nil {
		return nil, err
	}

	results := make([]*models.ParseResult, len(bodies))
	failed := 0
	for i, body := range bodies {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(bodies); j++ {
				results[j] = models.FailedResult(sourceID, err)
			}
			p.logger.Warn("batch stopped before completion",
				zap.String("source", sourceID),
				zap.Int("processed", i),
				zap.Int("total", len(bodies)),
				zap.Error(err))
			return results, fmt.Errorf("parse batch: %w", err)
		}

		res, err := p.ParsePost(ctx, sourceID, body)
		if err != nil {
			failed++
			p.logger.Warn("post failed in batch",
				zap.Int("index", i),
				zap.String("source", sourceID),
				zap.Error(err))
			res = models.FailedResult(sourceID, err)
		}
		results[i] = res
	}

	p.logger.Info("batch parsed",
		zap.String("source", sourceID),
		zap.Int("total", len(bodies)),
		zap.Int("failed", failed))
	return results, nil
}

// normalizeSourceID is the registry key for user input such as " BESalary ".
func normalizeSourceID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
