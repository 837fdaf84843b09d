// Package similarity scores how alike two short strings are after folding
// case and diacritics. It is the single scoring primitive shared by the
// value normalizer and the location resolver.
package similarity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// Similarity returns 1 - editDistance/maxLen over the folded inputs.
// Two empty inputs are identical (1.0). The result is symmetric and lies
// in [0, 1].
func Similarity(a, b string) float64 {
	return Score(Fold(a), Fold(b))
}

// Score is Similarity for inputs that are already folded. Callers that
// compare one query against many candidates fold once and use Score.
func Score(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	maxLen := max(la, lb)
	if maxLen == 0 {
		return 1.0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(maxLen)
}

// Distance is the unit-cost edit distance between the folded inputs.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(Fold(a), Fold(b))
}

// JaroWinkler is a prefix-weighted score over the folded inputs. It is only
// used for diagnostics (closest heading to a missing section).
func JaroWinkler(a, b string) float64 {
	fa, fb := Fold(a), Fold(b)
	if fa == "" && fb == "" {
		return 1.0
	}
	if fa == "" || fb == "" {
		return 0.0
	}
	return smetrics.JaroWinkler(fa, fb, 0.7, 4)
}
