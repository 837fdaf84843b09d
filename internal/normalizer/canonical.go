package normalizer

import (
	"strings"
	"unicode/utf8"

	"github.com/salary-parser/internal/similarity"
	"go.uber.org/zap"
)

// MatchStrategy names the matcher that produced a tag.
type MatchStrategy string

const (
	MatchStrategyExact     MatchStrategy = "exact"
	MatchStrategySubstring MatchStrategy = "substring"
	MatchStrategyFuzzy     MatchStrategy = "fuzzy"
)

// Match is the outcome of resolving one free-text value.
type Match struct {
	Tag      string        `json:"tag"`
	Strategy MatchStrategy `json:"strategy"`
	Score    float64       `json:"score"`
}

// Options tunes the matcher chain.
type Options struct {
	// Threshold is the minimum similarity a fuzzy match needs.
	Threshold float64
	// MinSubstringLen is the minimum rune length of both the input and the
	// phrase before containment counts. Keeps "ma" from matching "diploma".
	MinSubstringLen int
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{Threshold: 0.8, MinSubstringLen: 3}
}

type matcherFunc func(folded string, m *Mapping) (Match, bool)

// Normalizer maps free text onto the canonical tags of a mapping family by
// trying exact, substring and fuzzy matchers in that order.
type Normalizer struct {
	tables *Tables
	opts   Options
	chain  []matcherFunc
	logger *zap.Logger
}

// NewNormalizer builds a Normalizer over tables. A zero option falls back to
// its default.
func NewNormalizer(tables *Tables, opts Options, logger *zap.Logger) *Normalizer {
	def := DefaultOptions()
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if opts.MinSubstringLen <= 0 {
		opts.MinSubstringLen = def.MinSubstringLen
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Normalizer{
		tables: tables,
		opts:   opts,
		logger: logger,
	}
	n.chain = []matcherFunc{n.matchExact, n.matchSubstring, n.matchFuzzy}
	return n
}

// Tables exposes the tables the normalizer was built with.
func (n *Normalizer) Tables() *Tables {
	return n.tables
}

// Options returns the effective tuning.
func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize returns the canonical tag for raw, or false when no matcher
// accepts it.
func (n *Normalizer) Normalize(raw string, m *Mapping) (string, bool) {
	match, ok := n.Match(raw, m)
	return match.Tag, ok
}

// NormalizeFamily is Normalize against a family looked up by name.
func (n *Normalizer) NormalizeFamily(raw, family string) (string, bool) {
	m, ok := n.tables.Mapping(family)
	if !ok {
		return "", false
	}
	return n.Normalize(raw, m)
}

// Match runs the matcher chain and reports which matcher won.
func (n *Normalizer) Match(raw string, m *Mapping) (Match, bool) {
	if m == nil {
		return Match{}, false
	}
	folded := similarity.Fold(raw)
	if folded == "" {
		return Match{}, false
	}

	for _, matcher := range n.chain {
		if match, ok := matcher(folded, m); ok {
			n.logger.Debug("canonical match",
				zap.String("family", m.Family),
				zap.String("input", folded),
				zap.String("tag", match.Tag),
				zap.String("strategy", string(match.Strategy)),
				zap.Float64("score", match.Score))
			return match, true
		}
	}
	return Match{}, false
}

func (n *Normalizer) matchExact(folded string, m *Mapping) (Match, bool) {
	tag, ok := m.exact[folded]
	if !ok {
		return Match{}, false
	}
	return Match{Tag: tag, Strategy: MatchStrategyExact, Score: 1.0}, true
}

func (n *Normalizer) matchSubstring(folded string, m *Mapping) (Match, bool) {
	if utf8.RuneCountInString(folded) < n.opts.MinSubstringLen {
		return Match{}, false
	}
	// A phrase found inside the input beats an input found inside a phrase.
	// Among found phrases the one starting earliest wins ("Master in primary
	// education" is a master), then the longest, then table order.
	found, foundPos := -1, 0
	var foundPhrase string
	within := -1
	var withinPhrase string
	for i, phrases := range m.folded {
		for _, p := range phrases {
			if utf8.RuneCountInString(p) < n.opts.MinSubstringLen {
				continue
			}
			if pos := strings.Index(folded, p); pos >= 0 {
				if found < 0 || pos < foundPos || (pos == foundPos && len(p) > len(foundPhrase)) {
					found, foundPos, foundPhrase = i, pos, p
				}
				continue
			}
			if within < 0 && strings.Contains(p, folded) {
				within, withinPhrase = i, p
			}
		}
	}

	switch {
	case found >= 0:
		return Match{
			Tag:      m.Entries[found].Tag,
			Strategy: MatchStrategySubstring,
			Score:    similarity.Score(folded, foundPhrase),
		}, true
	case within >= 0:
		return Match{
			Tag:      m.Entries[within].Tag,
			Strategy: MatchStrategySubstring,
			Score:    similarity.Score(folded, withinPhrase),
		}, true
	}
	return Match{}, false
}

func (n *Normalizer) matchFuzzy(folded string, m *Mapping) (Match, bool) {
	best := Match{Strategy: MatchStrategyFuzzy}
	for i, phrases := range m.folded {
		for _, p := range phrases {
			// strict > keeps the first declared tag on ties
			if s := similarity.Score(folded, p); s > best.Score {
				best.Score = s
				best.Tag = m.Entries[i].Tag
			}
		}
	}
	if best.Tag == "" || best.Score < n.opts.Threshold {
		return Match{}, false
	}
	return best, true
}
