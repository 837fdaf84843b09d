package extractor

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// CleanBody prepares a post body for pattern matching. Zero-width and other
// format characters are removed, exotic spaces become plain spaces, line
// endings become \n, each line has its whitespace collapsed and trimmed, and
// blank-line runs shrink to a single blank line. Line structure is kept
// because field values run to the end of their line.
func CleanBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")

	// transform chains keep buffers, so one per call
	t := transform.Chain(
		runes.Remove(runes.In(unicode.Cf)),
		runes.Map(func(r rune) rune {
			if r != '\n' && unicode.IsSpace(r) {
				return ' '
			}
			return r
		}),
	)
	if s, _, err := transform.String(t, body); err == nil {
		body = s
	}

	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
