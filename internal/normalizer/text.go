package normalizer

import (
	"regexp"
	"strings"
)

var (
	markdownEscape = regexp.MustCompile(`\\([*_~` + "`" + `#>\[\]()|])`)
	markdownLink   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRunes  = strings.NewReplacer("**", "", "__", "", "~~", "", "*", "", "`", "")
)

// StripEmphasis removes markdown emphasis, inline code and link markup from
// a captured value: "**Master** in _law_" → "Master in law".
func StripEmphasis(s string) string {
	s = markdownEscape.ReplaceAllString(s, "$1")
	s = markdownLink.ReplaceAllString(s, "$1")
	s = emphasisRunes.Replace(s)

	// lone underscores only count as emphasis at word edges
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.Trim(w, "_")
	}
	return strings.Join(words, " ")
}

// CollapseSpaces trims s and folds every whitespace run into one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanText is the free-text normalizer: markup stripped, whitespace
// collapsed, leading label punctuation removed. Empty results are absent.
func CleanText(text string) (string, bool) {
	s := CollapseSpaces(StripEmphasis(text))
	s = strings.TrimLeft(s, ":-–| ")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
