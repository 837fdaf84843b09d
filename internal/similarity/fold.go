package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks (é → e, ç → c) and recomposes.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Fold returns the comparison form of s: diacritics stripped, remaining
// non-ASCII letters transliterated (ß → ss, ø → o), lowercased, dots and
// apostrophes dropped, any other punctuation turned into a single space.
//
// Fold is idempotent.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	s = StripDiacritics(s)
	if !isASCII(s) {
		s = unidecode.Unidecode(s)
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == '.' || r == '\'':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
