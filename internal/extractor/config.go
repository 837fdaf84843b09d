// Package extractor pulls raw field values out of community salary posts.
// Each community is described by a SourceConfig loaded from a YAML table;
// adding a community is a new table entry, not new code.
package extractor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data/sources.yaml
var sourcesYAML []byte

// ErrUnknownSource is returned for a source id missing from the registry.
var ErrUnknownSource = errors.New("unknown source")

// labelLine expands a field label into the "N. Label: value" template line.
// The label may be followed by more label text ("/month") and must end with
// a colon or question mark; the value runs to the end of the line.
const labelLine = `(?im)^[^\w\n]*(?:\d{1,2}[.)][ \t]*)?[^\w\n]*(?:%s)[^\n:?]*[:?][ \t]*(.*)$`

// FieldPattern configures one field. Exactly one of Label and Pattern is
// set.
type FieldPattern struct {
	Name    string `yaml:"name" json:"name"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern.
func (f *FieldPattern) Regexp() *regexp.Regexp {
	return f.re
}

// SourceConfig describes one origin community. It is immutable once loaded.
type SourceConfig struct {
	ID          string         `yaml:"id" json:"id"`
	OriginLabel string         `yaml:"origin_label" json:"origin_label"`
	CountryTag  string         `yaml:"country" json:"country"`
	CurrencyTag string         `yaml:"currency" json:"currency"`
	FeedURL     string         `yaml:"feed_url,omitempty" json:"feed_url,omitempty"`
	Sections    []string       `yaml:"sections" json:"sections"`
	Fields      []FieldPattern `yaml:"fields" json:"fields"`

	sections []*sectionMatcher
}

// FieldNames lists the configured field names in output order.
func (c *SourceConfig) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

type sourceTable struct {
	Sources []*SourceConfig `yaml:"sources"`
}

// Registry holds every configured source by id.
type Registry struct {
	byID  map[string]*SourceConfig
	order []*SourceConfig
}

// LoadRegistry reads the source table at path, or the embedded table when
// path is empty. Any invalid entry fails the whole load.
func LoadRegistry(path string, logger *zap.Logger) (*Registry, error) {
	data := sourcesYAML
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read source table %s: %w", path, err)
		}
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("source table loaded",
			zap.String("path", path),
			zap.Strings("sources", reg.IDs()))
	}
	return reg, nil
}

// ParseRegistry compiles a source table. It rejects an empty table, a
// duplicate source or field, a pattern that does not compile and a pattern
// without exactly one capture group.
func ParseRegistry(data []byte) (*Registry, error) {
	var table sourceTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse source table: %w", err)
	}
	if len(table.Sources) == 0 {
		return nil, fmt.Errorf("source table is empty")
	}

	reg := &Registry{byID: make(map[string]*SourceConfig, len(table.Sources))}
	for _, src := range table.Sources {
		if err := src.compile(); err != nil {
			return nil, err
		}
		if _, dup := reg.byID[src.ID]; dup {
			return nil, fmt.Errorf("source %q declared twice", src.ID)
		}
		reg.byID[src.ID] = src
		reg.order = append(reg.order, src)
	}
	return reg, nil
}

func (c *SourceConfig) compile() error {
	if c.ID == "" {
		return fmt.Errorf("source without id")
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("source %s: no fields", c.ID)
	}

	seen := make(map[string]bool, len(c.Fields))
	for i := range c.Fields {
		f := &c.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("source %s: field %d has no name", c.ID, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("source %s: field %q declared twice", c.ID, f.Name)
		}
		seen[f.Name] = true

		expr := f.Pattern
		switch {
		case f.Label != "" && f.Pattern != "":
			return fmt.Errorf("source %s: field %q has both label and pattern", c.ID, f.Name)
		case f.Label != "":
			expr = fmt.Sprintf(labelLine, f.Label)
		case f.Pattern == "":
			return fmt.Errorf("source %s: field %q has neither label nor pattern", c.ID, f.Name)
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("source %s: field %q: %w", c.ID, f.Name, err)
		}
		if re.NumSubexp() != 1 {
			return fmt.Errorf("source %s: field %q: want exactly one capture group, got %d",
				c.ID, f.Name, re.NumSubexp())
		}
		f.re = re
	}

	c.sections = make([]*sectionMatcher, 0, len(c.Sections))
	for _, title := range c.Sections {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("source %s: empty section title", c.ID)
		}
		c.sections = append(c.sections, newSectionMatcher(title))
	}
	return nil
}

// Get returns the source with the given id.
func (r *Registry) Get(id string) (*SourceConfig, error) {
	src, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return src, nil
}

// IDs lists the source ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns the sources in table order.
func (r *Registry) All() []*SourceConfig {
	return r.order
}
