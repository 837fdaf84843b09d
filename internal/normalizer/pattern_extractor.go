package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumberToken is one numeric figure (or range) found in free text.
type NumberToken struct {
	Text    string  `json:"text"`     // as written, e.g. "3,5" or "20 - 30"
	Value   float64 `json:"value"`    // first figure
	Upper   float64 `json:"upper"`    // second figure of a range, else Value
	IsRange bool    `json:"is_range"` // "20-30"
	Start   int     `json:"start"`    // byte offsets into the source
	End     int     `json:"end"`
}

// Normalized renders the token without inner spaces and with a decimal dot:
// "20 - 30" → "20-30", "12,5" → "12.5".
func (t NumberToken) Normalized() string {
	s := strings.Join(strings.Fields(t.Text), "")
	s = strings.ReplaceAll(s, "–", "-")
	return strings.ReplaceAll(s, ",", ".")
}

var (
	// N, N.N or N,N optionally followed by a range tail
	numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?(?:\s*[-–]\s*\d+(?:[.,]\d+)?)?`)

	// amounts with thousands separators: 3.450 / 3,450 / 3 450 / 3'450,
	// an optional 1-2 digit decimal tail and an optional k suffix
	amountPattern = regexp.MustCompile(`(?i)(\d{1,3}(?:[ .,'\x{00A0}]\d{3})+|\d+)(?:[.,](\d{1,2}))?(?:\s*(k)\b)?`)

	monthUnitPattern   = regexp.MustCompile(`(?i)\b(?:months?|mths?|maand(?:en)?|mnd|mois|monate?)\b`)
	leadingMonthSuffix = regexp.MustCompile(`(?i)^\s*(?:months?|mths?|maand(?:en)?|mnd|mois|monate?)\b`)
	yearUnitPattern    = regexp.MustCompile(`(?i)\b(?:years?|yrs?|jaar|jaren|ans?|annees?|années?|jahre?)\b`)
)

// Numbers returns every numeric token of text in order of appearance.
func Numbers(text string) []NumberToken {
	locs := numberPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	tokens := make([]NumberToken, 0, len(locs))
	for _, loc := range locs {
		if tok, ok := parseNumberToken(text, loc[0], loc[1]); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// FirstNumber is the first numeric token of text.
func FirstNumber(text string) (NumberToken, bool) {
	loc := numberPattern.FindStringIndex(text)
	if loc == nil {
		return NumberToken{}, false
	}
	return parseNumberToken(text, loc[0], loc[1])
}

func parseNumberToken(text string, start, end int) (NumberToken, bool) {
	raw := text[start:end]
	tok := NumberToken{Text: raw, Start: start, End: end}

	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '-' || r == '–' })
	if len(parts) == 0 {
		return NumberToken{}, false
	}
	v, err := parseDecimal(parts[0])
	if err != nil {
		return NumberToken{}, false
	}
	tok.Value, tok.Upper = v, v
	if len(parts) > 1 {
		u, err := parseDecimal(parts[1])
		if err != nil {
			return NumberToken{}, false
		}
		tok.Upper = u
		tok.IsRange = true
	}
	return tok, true
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	return strconv.ParseFloat(s, 64)
}

// Amounts returns every amount of text, honouring thousands separators and
// the k suffix: "€3.450,50" → 3450.5, "45k" → 45000.
func Amounts(text string) []float64 {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, m[1])
		whole, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			frac, err := strconv.ParseFloat("0."+m[2], 64)
			if err == nil {
				whole += frac
			}
		}
		if m[3] != "" {
			whole *= 1000
		}
		out = append(out, whole)
	}
	return out
}

// mentionsMonths reports whether the figure at the start of text is counted
// in months: either the unit right after it is a month unit, or the text
// names months and never years.
func mentionsMonths(text string, tok NumberToken) bool {
	if leadingMonthSuffix.MatchString(text[tok.End:]) {
		return true
	}
	return monthUnitPattern.MatchString(text) && !yearUnitPattern.MatchString(text)
}

func floorInt(v float64) int {
	return int(math.Floor(v))
}
