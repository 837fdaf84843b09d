// Package location resolves free-text work locations against a small
// multilingual gazetteer and translates place names between locales.
package location

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/salary-parser/internal/external"
	"github.com/salary-parser/internal/similarity"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data/locations.yaml
var locationsYAML []byte

// Default tuning.
const (
	DefaultMinScore = 0.6
	DefaultLimit    = 5
	DefaultLocale   = "en"

	minQueryLen = 2
)

// Entry is one country or city of the gazetteer.
type Entry struct {
	Name      string            `yaml:"name" json:"name"`
	Code      string            `yaml:"code,omitempty" json:"code,omitempty"`
	Country   string            `yaml:"country,omitempty" json:"country,omitempty"`
	Localized map[string]string `yaml:"localized" json:"localized"`
	Aliases   []string          `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	variants []string
}

// IsCity reports whether e is a city rather than a country.
func (e *Entry) IsCity() bool {
	return e.Country != ""
}

// NameIn returns the name of e in locale, falling back to the canonical
// name.
func (e *Entry) NameIn(locale string) string {
	if n, ok := e.Localized[normalizeLocale(locale)]; ok && n != "" {
		return n
	}
	return e.Name
}

// Suggestion is one ranked city for a partial query.
type Suggestion struct {
	City         string  `json:"city"`
	Score        float64 `json:"score"`
	IsExactMatch bool    `json:"isExactMatch"`
}

// Options tunes the resolver.
type Options struct {
	MinScore float64
	Limit    int
}

type gazetteer struct {
	Countries []*Entry `yaml:"countries"`
	Cities    []*Entry `yaml:"cities"`
}

// Resolver answers suggestion, translation and lookup queries. It is
// immutable after construction and safe for concurrent use.
type Resolver struct {
	countries []*Entry
	cities    []*Entry
	byName    map[string]*Entry
	opts      Options
	hinter    external.CityHinter
	logger    *zap.Logger
}

// NewResolver builds a resolver over the embedded gazetteer. hinter may be
// nil.
func NewResolver(opts Options, hinter external.CityHinter, logger *zap.Logger) (*Resolver, error) {
	return ParseGazetteer(locationsYAML, opts, hinter, logger)
}

// ParseGazetteer builds a resolver from YAML. A folded name shared by two
// entries is rejected.
func ParseGazetteer(data []byte, opts Options, hinter external.CityHinter, logger *zap.Logger) (*Resolver, error) {
	var g gazetteer
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}
	if len(g.Cities) == 0 {
		return nil, fmt.Errorf("gazetteer has no cities")
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resolver{
		countries: g.Countries,
		cities:    g.Cities,
		byName:    make(map[string]*Entry),
		opts:      opts,
		hinter:    hinter,
		logger:    logger,
	}

	all := make([]*Entry, 0, len(g.Countries)+len(g.Cities))
	all = append(all, g.Countries...)
	all = append(all, g.Cities...)
	for _, e := range all {
		if e.Name == "" {
			return nil, fmt.Errorf("gazetteer entry without name")
		}
		e.variants = foldedVariants(e)
		for _, v := range e.variants {
			if prev, dup := r.byName[v]; dup && prev != e {
				return nil, fmt.Errorf("gazetteer name %q shared by %q and %q", v, prev.Name, e.Name)
			}
			r.byName[v] = e
		}
	}
	return r, nil
}

// foldedVariants lists the canonical name, localized names in locale order
// and aliases, folded and deduplicated.
func foldedVariants(e *Entry) []string {
	locales := make([]string, 0, len(e.Localized))
	for l := range e.Localized {
		locales = append(locales, l)
	}
	sort.Strings(locales)

	names := []string{e.Name}
	for _, l := range locales {
		names = append(names, e.Localized[l])
	}
	names = append(names, e.Aliases...)

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		f := similarity.Fold(n)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Lookup finds the entry one of whose names equals name after folding.
func (r *Resolver) Lookup(name string) (*Entry, bool) {
	e, ok := r.byName[similarity.Fold(name)]
	return e, ok
}

// Translate returns name as it is written in locale. Unknown names come
// back unchanged.
func (r *Resolver) Translate(name, locale string) string {
	e, ok := r.Lookup(name)
	if !ok {
		return name
	}
	return e.NameIn(locale)
}

// Options returns the effective tuning.
func (r *Resolver) Options() Options {
	return r.opts
}

// Countries lists the country entries in table order.
func (r *Resolver) Countries() []*Entry {
	return r.countries
}

// Cities lists the city entries in table order.
func (r *Resolver) Cities() []*Entry {
	return r.cities
}

type scored struct {
	entry *Entry
	score float64
	exact bool
	order int
}

// Suggest ranks cities against a partial query. Queries under two
// characters return nothing. Exact matches come first, then higher scores;
// equal scores keep table order. minScore <= 0 uses the resolver default.
func (r *Resolver) Suggest(query, country, locale string, minScore float64) []Suggestion {
	ranked := r.rank(query, country, minScore)
	out := make([]Suggestion, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, Suggestion{
			City:         s.entry.NameIn(locale),
			Score:        s.score,
			IsExactMatch: s.exact,
		})
	}
	return out
}

func (r *Resolver) rank(query, country string, minScore float64) []scored {
	q := similarity.Fold(query)
	if utf8.RuneCountInString(q) < minQueryLen {
		return nil
	}
	if minScore <= 0 {
		minScore = r.opts.MinScore
	}
	scope, ok := r.countryScope(country)
	if !ok {
		return nil
	}

	var results []scored
	for i, c := range r.cities {
		if scope != "" && c.Country != scope {
			continue
		}
		best, exact := 0.0, false
		for _, v := range c.variants {
			if v == q {
				exact = true
			}
			if s := similarity.Score(q, v); s > best {
				best = s
			}
		}
		if best < minScore {
			continue
		}
		results = append(results, scored{entry: c, score: best, exact: exact, order: i})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.exact != b.exact {
			return a.exact
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return a.order < b.order
	})
	if len(results) > r.opts.Limit {
		results = results[:r.opts.Limit]
	}
	return results
}

// countryScope maps a code or any country name to its ISO code. An empty
// scope means every country; an unknown one matches nothing.
func (r *Resolver) countryScope(country string) (string, bool) {
	country = strings.TrimSpace(country)
	if country == "" {
		return "", true
	}
	for _, c := range r.countries {
		if strings.EqualFold(c.Code, country) {
			return c.Code, true
		}
	}
	if e, ok := r.Lookup(country); ok && !e.IsCity() {
		return e.Code, true
	}
	return "", false
}

var locationSeparators = regexp.MustCompile(`[,/;|()]+|\s+-\s+|\s+(?:near|nabij|bij|pres de|près de|area|regio|region|omgeving)\s+`)

// ResolveCity picks the city a free-text location most likely names:
// exact name, then each separated part and word, then libpostal hints,
// then the best fuzzy suggestion. country narrows only the fuzzy step.
func (r *Resolver) ResolveCity(text, country string) (*Entry, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	if e, ok := r.Lookup(text); ok && e.IsCity() {
		return e, true
	}

	parts := splitLocation(text)
	for _, p := range parts {
		if e, ok := r.Lookup(p); ok && e.IsCity() {
			return e, true
		}
	}
	scope, _ := r.countryScope(country)
	var outOfScope *Entry
	for _, p := range parts {
		for _, w := range strings.Fields(similarity.Fold(p)) {
			if utf8.RuneCountInString(w) < 3 {
				continue
			}
			e, ok := r.byName[w]
			if !ok || !e.IsCity() {
				continue
			}
			if scope == "" || e.Country == scope {
				return e, true
			}
			if outOfScope == nil {
				outOfScope = e
			}
		}
	}
	if outOfScope != nil {
		return outOfScope, true
	}

	if r.hinter != nil {
		for _, h := range r.hinter.CityHints(text) {
			if e, ok := r.Lookup(h); ok && e.IsCity() {
				r.logger.Debug("city resolved from libpostal hint",
					zap.String("text", text), zap.String("hint", h))
				return e, true
			}
		}
	}

	var best *scored
	for _, p := range parts {
		ranked := r.rank(p, country, 0)
		if len(ranked) > 0 && (best == nil || ranked[0].score > best.score) {
			top := ranked[0]
			best = &top
		}
	}
	if best == nil {
		return nil, false
	}
	return best.entry, true
}

func splitLocation(text string) []string {
	raw := locationSeparators.Split(strings.ToLower(text), -1)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if locale == "" {
		return DefaultLocale
	}
	return locale
}
