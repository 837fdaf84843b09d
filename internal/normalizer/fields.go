package normalizer

import (
	"regexp"
	"strings"

	"github.com/salary-parser/internal/similarity"
)

// Age bounds; anything outside is treated as a typo.
const (
	MinAge = 16
	MaxAge = 100

	maxExperienceYears = 70
)

// Age reads the first integer of text and accepts it when it is a plausible
// working age: "42 jaar" → 42, "5" → none.
func Age(text string) (int, bool) {
	return AgeWithin(text, MinAge, MaxAge)
}

// AgeWithin is Age with explicit bounds.
func AgeWithin(text string, minAge, maxAge int) (int, bool) {
	tok, ok := FirstNumber(text)
	if !ok {
		return 0, false
	}
	age := floorInt(tok.Value)
	if age < minAge || age > maxAge {
		return 0, false
	}
	return age, true
}

// Experience returns whole years of experience. A figure counted in months
// is divided by 12 and floored: "18 months" → 1, "3.5 years" → 3.
func Experience(text string) (int, bool) {
	tok, ok := FirstNumber(text)
	if !ok {
		return 0, false
	}
	years := tok.Value
	if mentionsMonths(text, tok) {
		years = tok.Value / 12
	}
	y := floorInt(years)
	if y < 0 || y > maxExperienceYears {
		return 0, false
	}
	return y, true
}

// Integer reads the first integer of text within [min, max].
func Integer(text string, min, max int) (int, bool) {
	tok, ok := FirstNumber(text)
	if !ok {
		return 0, false
	}
	v := floorInt(tok.Value)
	if v < min || v > max {
		return 0, false
	}
	return v, true
}

// Money reads the first currency amount of text within [min, max]:
// "€ 3.450,50 bruto" → 3450, "45k" → 45000.
func Money(text string, min, max int) (int, bool) {
	amounts := Amounts(text)
	if len(amounts) == 0 {
		return 0, false
	}
	v := floorInt(amounts[0])
	if v < min || v > max {
		return 0, false
	}
	return v, true
}

var boolNegation = regexp.MustCompile(`\b(?:not|no|niet|geen|nee|neen|non|pas|nooit|never|jamais|without|zonder|sans|ohne|nicht|kein|keine)\b`)

// Bool resolves yes/no answers across languages. The whole answer is tried
// first, then its first word ("Yes, 13.92" → true). A negation anywhere else
// means no ("not included", "heb er geen"), and only then does the
// generic matcher chain run.
func (n *Normalizer) Bool(text string) (bool, bool) {
	m := n.tables.MustMapping(FamilyYesNo)
	folded := similarity.Fold(text)
	if folded == "" {
		return false, false
	}

	if tag, ok := m.exact[folded]; ok {
		return tag == "yes", true
	}
	if first, _, _ := strings.Cut(folded, " "); first != folded {
		if tag, ok := m.exact[first]; ok {
			return tag == "yes", true
		}
	}
	if boolNegation.MatchString(folded) {
		return false, true
	}
	if tag, ok := n.Normalize(text, m); ok {
		return tag == "yes", true
	}
	return false, false
}

var companySizeBuckets = []struct {
	upTo int
	tag  string
}{
	{10, "micro"},
	{50, "small"},
	{250, "medium"},
	{1000, "large"},
}

var openEndedCount = regexp.MustCompile(`(?i)\d\s*\+|>\s*\d|\b(?:more than|over|meer dan|plus de|mehr als)\b`)

// CompanySize buckets an employee count ("±200", "50-250", "10k+") by its
// largest figure and falls back to the company_size phrases when text has
// no figure. Open-ended counts ("1000+") fall in the bucket above.
func (n *Normalizer) CompanySize(text string) (string, bool) {
	count := 0
	for _, a := range Amounts(text) {
		if c := floorInt(a); c > count {
			count = c
		}
	}
	if count > 0 {
		if openEndedCount.MatchString(text) {
			count++
		}
		for _, b := range companySizeBuckets {
			if count <= b.upTo {
				return b.tag, true
			}
		}
		return "enterprise", true
	}
	return n.NormalizeFamily(text, FamilyCompanySize)
}

var (
	remoteNegation = regexp.MustCompile(`\b(?:no|geen|niet|nooit|never|pas de|zero|0)\b.*\b(?:remote|thuiswerk|telewerk|teletravail|homeworking|home office|wfh)\b`)
	hybridDays     = regexp.MustCompile(`\b[1-4](?:[.,]5)?\s*(?:x\s*)?(?:days?|dagen|dag|jours?|tage?|d)\b`)
)

// WorkArrangement resolves remote-work answers. Negations ("geen
// thuiswerk") mean onsite and a 1-4 day count means hybrid; anything else
// goes through the work_arrangement phrases.
func (n *Normalizer) WorkArrangement(text string) (string, bool) {
	m := n.tables.MustMapping(FamilyWorkArrangement)
	folded := similarity.Fold(text)
	if folded == "" {
		return "", false
	}
	if tag, ok := m.exact[folded]; ok {
		return tag, true
	}
	if remoteNegation.MatchString(folded) {
		return "onsite", true
	}
	if hybridDays.MatchString(folded) {
		return "hybrid", true
	}
	return n.Normalize(text, m)
}
