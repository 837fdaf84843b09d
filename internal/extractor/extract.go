package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/salary-parser/internal/normalizer"
	"github.com/salary-parser/internal/similarity"
)

// RawField is the unparsed text captured for one field. Text is nil when
// the field was not found or was left blank.
type RawField struct {
	Name string  `json:"name"`
	Text *string `json:"text"`
}

// Extract returns one RawField per configured field, in configuration
// order. A field that does not match yields a nil Text; the other fields are
// still extracted.
func Extract(body string, cfg *SourceConfig) []RawField {
	clean := CleanBody(body)
	out := make([]RawField, len(cfg.Fields))
	for i := range cfg.Fields {
		f := &cfg.Fields[i]
		out[i].Name = f.Name

		m := f.re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(normalizer.StripEmphasis(m[1])); v != "" {
			out[i].Text = &v
		}
	}
	return out
}

// SectionReport tells how, if at all, a section title shows up in a post.
type SectionReport struct {
	Title      string  `json:"title"`
	Verbatim   bool    `json:"verbatim"`
	Whitespace bool    `json:"whitespace"`
	Markup     bool    `json:"markup"`
	Found      bool    `json:"found"`
	Closest    float64 `json:"closest"`
}

type sectionMatcher struct {
	title     string
	collapsed string
	markup    *regexp.Regexp
}

func newSectionMatcher(title string) *sectionMatcher {
	words := strings.Fields(title)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	// "## Salary", "**SALARY**", "> __Salary:__"
	expr := fmt.Sprintf(`(?im)^[ \t]*(?:(?:#{1,6}|>|[*_~]{1,3})[ \t]*)+%s[*_~: \t]*$`,
		strings.Join(quoted, `[ \t]+`))
	return &sectionMatcher{
		title:     title,
		collapsed: strings.ToLower(strings.Join(words, " ")),
		markup:    regexp.MustCompile(expr),
	}
}

// DetectSections reports, per configured section title, whether the body
// carries it verbatim, after whitespace and case normalisation, or as a
// heading/emphasis line. Closest is the best Jaro-Winkler score of any line
// against the title, a hint for titles that were reworded.
func DetectSections(body string, cfg *SourceConfig) []SectionReport {
	clean := CleanBody(body)
	collapsed := strings.ToLower(strings.Join(strings.Fields(clean), " "))

	var lines []string
	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimLeft(normalizer.StripEmphasis(line), "#> ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	reports := make([]SectionReport, 0, len(cfg.sections))
	for _, s := range cfg.sections {
		r := SectionReport{
			Title:      s.title,
			Verbatim:   strings.Contains(body, s.title),
			Whitespace: strings.Contains(collapsed, s.collapsed),
			Markup:     s.markup.MatchString(clean),
		}
		r.Found = r.Verbatim || r.Whitespace || r.Markup
		for _, line := range lines {
			if score := similarity.JaroWinkler(s.title, line); score > r.Closest {
				r.Closest = score
			}
		}
		reports = append(reports, r)
	}
	return reports
}
