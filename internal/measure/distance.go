// Package measure pulls a commute distance out of answers that freely mix
// distance and travel time, e.g. "18km 25min" or "45 minutes, 8 km".
package measure

import (
	"regexp"
	"strings"

	"github.com/salary-parser/internal/normalizer"
)

// MaxDistance is the largest plausible one-way commute, in the unit written.
const MaxDistance = 500

var (
	distanceUnit = regexp.MustCompile(`(?i)^\s*(?:kilom[eè]tres?|kilometers?|kilometer|kms?|miles?|mi)\b`)
	timeUnit     = regexp.MustCompile(`(?i)^\s*(?:minutes?|minuten|minuut|mins?|hours?|hrs?|uur|heures?|stunden?|std|h|u)(?:\b|\d)`)
	// the minutes half of "1h30" or "1u15"
	timeUnitBefore = regexp.MustCompile(`(?i)\d\s*[hu]\s*$`)
	timeWord       = regexp.MustCompile(`(?i)\b(?:minutes?|minuten|minuut|mins?|hours?|hrs?|uur|heures?|stunden?)\b`)
)

// Extractor applies the distance rules with a configurable upper bound.
type Extractor struct {
	max float64
}

// NewExtractor returns an Extractor rejecting figures above max. max <= 0
// uses MaxDistance.
func NewExtractor(max float64) *Extractor {
	if max <= 0 {
		max = MaxDistance
	}
	return &Extractor{max: max}
}

var defaultExtractor = NewExtractor(MaxDistance)

// ExtractDistance returns the distance figure of text with the default
// bound. See Extractor.Extract.
func ExtractDistance(text string) (string, bool) {
	return defaultExtractor.Extract(text)
}

// Extract returns the distance figure of text as a normalised numeric string
// ("20-30", "12.5"). Rules, first hit wins:
//  1. the number written right before a distance unit;
//  2. with a time unit present, the first number not bound to one (a pure
//     duration gives nothing);
//  3. the whole text when it is a bare number or range;
//  4. the first number anywhere.
//
// Figures above the bound are rejected rather than clipped.
func (e *Extractor) Extract(text string) (string, bool) {
	text = strings.TrimSpace(text)
	tokens := normalizer.Numbers(text)
	if len(tokens) == 0 {
		return "", false
	}

	for _, tok := range tokens {
		if distanceUnit.MatchString(text[tok.End:]) {
			return e.accept(tok)
		}
	}

	if hasTimeUnit(text, tokens) {
		for _, tok := range tokens {
			if !boundToTime(text, tok) {
				return e.accept(tok)
			}
		}
		return "", false
	}

	// a bare number or range is its own first token
	return e.accept(tokens[0])
}

func (e *Extractor) accept(tok normalizer.NumberToken) (string, bool) {
	if tok.Upper > e.max || tok.Value > e.max {
		return "", false
	}
	return tok.Normalized(), true
}

func hasTimeUnit(text string, tokens []normalizer.NumberToken) bool {
	if timeWord.MatchString(text) {
		return true
	}
	for _, tok := range tokens {
		if boundToTime(text, tok) {
			return true
		}
	}
	return false
}

func boundToTime(text string, tok normalizer.NumberToken) bool {
	return timeUnit.MatchString(text[tok.End:]) || timeUnitBefore.MatchString(text[:tok.Start])
}
