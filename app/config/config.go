package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/salary-parser/internal/location"
	"github.com/salary-parser/internal/measure"
	"github.com/salary-parser/internal/normalizer"
	"github.com/salary-parser/internal/parser"
	"gopkg.in/yaml.v3"
)

type NormalizerCfg struct {
	Threshold       float64 `yaml:"threshold" json:"threshold"`
	MinSubstringLen int     `yaml:"min_substring_len" json:"min_substring_len"`
}

type LocationCfg struct {
	MinScore     float64 `yaml:"min_score" json:"min_score"`
	SuggestLimit int     `yaml:"suggest_limit" json:"suggest_limit"`
	UseLibpostal bool    `yaml:"use_libpostal" json:"use_libpostal"`
}

type BoundsCfg struct {
	MinAge      int     `yaml:"min_age" json:"min_age"`
	MaxAge      int     `yaml:"max_age" json:"max_age"`
	MaxDistance float64 `yaml:"max_distance_km" json:"max_distance_km"`
}

type ParserCfg struct {
	SourcesPath string        `yaml:"sources_path" json:"sources_path"`
	Normalizer  NormalizerCfg `yaml:"normalizer" json:"normalizer"`
	Location    LocationCfg   `yaml:"location" json:"location"`
	Bounds      BoundsCfg     `yaml:"bounds" json:"bounds"`
	MaxBatch    int           `yaml:"max_batch" json:"max_batch"`
}

// C holds the parser tuning loaded at start.
var C = Default()

// Default is the tuning used when no file overrides it.
func Default() ParserCfg {
	n := normalizer.DefaultOptions()
	p := parser.DefaultOptions()
	return ParserCfg{
		Normalizer: NormalizerCfg{
			Threshold:       n.Threshold,
			MinSubstringLen: n.MinSubstringLen,
		},
		Location: LocationCfg{
			MinScore:     location.DefaultMinScore,
			SuggestLimit: location.DefaultLimit,
		},
		Bounds: BoundsCfg{
			MinAge:      p.MinAge,
			MaxAge:      p.MaxAge,
			MaxDistance: measure.MaxDistance,
		},
		MaxBatch: 5000,
	}
}

// Load reads path over the defaults into C. Unset keys keep their default.
func Load(path string) error {
	cfg, err := Parse(path)
	if err != nil {
		return err
	}
	C = cfg
	return nil
}

// Parse reads path over the defaults and applies env overrides.
func Parse(path string) (ParserCfg, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read parser config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse parser config: %w", err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ENV overrides
func applyEnv(cfg *ParserCfg) {
	if v, err := strconv.ParseFloat(os.Getenv("NORMALIZER_THRESHOLD"), 64); err == nil {
		cfg.Normalizer.Threshold = v
	}
	if v, err := strconv.Atoi(os.Getenv("NORMALIZER_MIN_SUBSTRING_LEN")); err == nil {
		cfg.Normalizer.MinSubstringLen = v
	}
	if v := os.Getenv("SOURCES_PATH"); v != "" {
		cfg.SourcesPath = v
	}
	switch os.Getenv("USE_LIBPOSTAL") {
	case "0":
		cfg.Location.UseLibpostal = false
	case "1":
		cfg.Location.UseLibpostal = true
	}
}

// Validate rejects tuning that would make every match fail or succeed.
func (c ParserCfg) Validate() error {
	if c.Normalizer.Threshold <= 0 || c.Normalizer.Threshold > 1 {
		return fmt.Errorf("normalizer.threshold must be in (0, 1], got %v", c.Normalizer.Threshold)
	}
	if c.Normalizer.MinSubstringLen < 1 {
		return fmt.Errorf("normalizer.min_substring_len must be positive, got %d", c.Normalizer.MinSubstringLen)
	}
	if c.Location.MinScore < 0 || c.Location.MinScore > 1 {
		return fmt.Errorf("location.min_score must be in [0, 1], got %v", c.Location.MinScore)
	}
	if c.Bounds.MinAge >= c.Bounds.MaxAge {
		return fmt.Errorf("bounds: min_age %d must be below max_age %d", c.Bounds.MinAge, c.Bounds.MaxAge)
	}
	if c.MaxBatch < 1 {
		return fmt.Errorf("max_batch must be positive, got %d", c.MaxBatch)
	}
	return nil
}

func (c ParserCfg) NormalizerOptions() normalizer.Options {
	return normalizer.Options{
		Threshold:       c.Normalizer.Threshold,
		MinSubstringLen: c.Normalizer.MinSubstringLen,
	}
}

func (c ParserCfg) LocationOptions() location.Options {
	return location.Options{
		MinScore: c.Location.MinScore,
		Limit:    c.Location.SuggestLimit,
	}
}

func (c ParserCfg) ParserOptions() parser.Options {
	return parser.Options{
		MinAge:      c.Bounds.MinAge,
		MaxAge:      c.Bounds.MaxAge,
		MaxDistance: c.Bounds.MaxDistance,
	}
}

func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
