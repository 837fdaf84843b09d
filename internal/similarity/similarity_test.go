package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"Liège":              "liege",
		"  Brussel   Noord ": "brussel noord",
		"M.Sc.":              "msc",
		"Straße":             "strasse",
		"Køge":               "koge",
		"100% remote":        "100 remote",
		"km's":               "kms",
		"Prof.  Bachelor":    "prof bachelor",
		"**Master**":         "master",
	}
	for in, want := range cases {
		assert.Equal(t, want, Fold(in), "Fold(%q)", in)
	}
}

func TestFold_Idempotent(t *testing.T) {
	for _, s := range []string{"Liège", "Ça va?", "Mönchengladbach", "x-y_z"} {
		once := Fold(s)
		assert.Equal(t, once, Fold(once))
	}
}

func TestSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"", "a", "Antwerpen", "Liège"} {
		assert.Equal(t, 1.0, Similarity(s, s))
	}
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilarity_CaseAndDiacriticsInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("LIEGE", "liège"))
	assert.Equal(t, 1.0, Similarity("Bruxelles", "bruxelles"))
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"master", "mastr"},
		{"bachelor", "bachelors"},
		{"gent", "ghent"},
		{"", "abc"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%v", p)
	}
}

func TestSimilarity_Values(t *testing.T) {
	// one substitution over six runes
	assert.InDelta(t, 1.0-1.0/6.0, Similarity("master", "mester"), 1e-9)
	// one insertion over nine runes
	assert.InDelta(t, 1.0-1.0/9.0, Similarity("bachelor", "bachelors"), 1e-9)
	assert.Equal(t, 0.0, Similarity("", "abc"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestSimilarity_Bounds(t *testing.T) {
	words := []string{"", "a", "ab", "antwerp", "antwerpen", "anvers", "zzz"}
	for _, a := range words {
		for _, b := range words {
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance("Liège", "liege"))
	assert.Equal(t, 3, Distance("kitten", "sitting"))
}

func TestJaroWinkler(t *testing.T) {
	assert.Equal(t, 1.0, JaroWinkler("", ""))
	assert.Equal(t, 0.0, JaroWinkler("", "abc"))
	assert.Greater(t, JaroWinkler("PERSONALIA", "personalia:"), 0.9)
	assert.Less(t, JaroWinkler("PERSONALIA", "mobility"), JaroWinkler("PERSONALIA", "personal"))
}
