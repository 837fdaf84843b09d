//go:build libpostal

package external

import (
	"strings"

	"github.com/openvenues/gopostal/expand"
	"github.com/openvenues/gopostal/parser"
)

// LibpostalHinter asks libpostal which parts of a free-text location look
// like a city. Needs the libpostal C library; build with -tags libpostal.
type LibpostalHinter struct {
	languages []string
}

// NewCityHinter returns the libpostal hinter.
func NewCityHinter(languages ...string) CityHinter {
	if len(languages) == 0 {
		languages = []string{"nl", "fr", "en", "de"}
	}
	return &LibpostalHinter{languages: languages}
}

// CityHints returns city and state components, best expansion first.
func (h *LibpostalHinter) CityHints(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	opts := expand.GetDefaultExpansionOptions()
	opts.Languages = h.languages
	candidates := []string{raw}
	if exps := expand.ExpandAddressOptions(raw, opts); len(exps) > 0 {
		candidates = append(candidates, exps[0])
	}

	var hints []string
	seen := map[string]bool{}
	for _, c := range candidates {
		for _, comp := range parser.ParseAddress(c) {
			switch comp.Label {
			case "city", "city_district", "suburb", "state_district", "state":
				if !seen[comp.Value] {
					seen[comp.Value] = true
					hints = append(hints, comp.Value)
				}
			}
		}
	}
	return hints
}

// Enabled reports whether libpostal is compiled in.
func Enabled() bool { return true }
