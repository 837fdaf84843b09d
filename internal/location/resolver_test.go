package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(Options{}, nil, nil)
	require.NoError(t, err)
	return r
}

type fakeHinter struct{ hints []string }

func (f fakeHinter) CityHints(string) []string { return f.hints }

func TestSuggest_ShortQuery(t *testing.T) {
	r := newTestResolver(t)
	assert.Empty(t, r.Suggest("", "", "en", 0))
	assert.Empty(t, r.Suggest("a", "", "en", 0))
	assert.Empty(t, r.Suggest(" é ", "", "en", 0))
}

func TestSuggest_ExactMatchFirst(t *testing.T) {
	r := newTestResolver(t)

	got := r.Suggest("Gent", "BE", "nl", 0)
	require.NotEmpty(t, got)
	assert.Equal(t, "Gent", got[0].City)
	assert.True(t, got[0].IsExactMatch)
	assert.Equal(t, 1.0, got[0].Score)
	for _, s := range got[1:] {
		assert.False(t, s.IsExactMatch)
	}
}

func TestSuggest_LocaleDisplay(t *testing.T) {
	r := newTestResolver(t)

	got := r.Suggest("antwerpen", "", "fr", 0)
	require.NotEmpty(t, got)
	assert.Equal(t, "Anvers", got[0].City)

	got = r.Suggest("Luik", "BE", "en", 0)
	require.NotEmpty(t, got)
	assert.Equal(t, "Liège", got[0].City)
}

func TestSuggest_OrderingAndLimit(t *testing.T) {
	r := newTestResolver(t)

	got := r.Suggest("bru", "", "en", 0.1)
	assert.LessOrEqual(t, len(got), DefaultLimit)
	for i := 1; i < len(got); i++ {
		if got[i-1].IsExactMatch == got[i].IsExactMatch {
			assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		}
	}
}

func TestSuggest_MinScore(t *testing.T) {
	r := newTestResolver(t)

	for _, s := range r.Suggest("Antwrp", "", "en", 0) {
		assert.GreaterOrEqual(t, s.Score, DefaultMinScore)
	}
	got := r.Suggest("Antwrp", "", "en", 0)
	require.NotEmpty(t, got)
	assert.Equal(t, "Antwerp", got[0].City)
	assert.False(t, got[0].IsExactMatch)

	assert.Empty(t, r.Suggest("zzzzzz", "", "en", 0))
}

func TestSuggest_CountryScope(t *testing.T) {
	r := newTestResolver(t)

	assert.NotEmpty(t, r.Suggest("Lille", "FR", "en", 0))
	assert.NotEmpty(t, r.Suggest("Lille", "Frankrijk", "en", 0))
	assert.Empty(t, r.Suggest("Lille", "BE", "en", 0.95))
	assert.Empty(t, r.Suggest("Lille", "Atlantis", "en", 0))
}

func TestTranslate(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "Bruxelles", r.Translate("Brussel", "fr"))
	assert.Equal(t, "Antwerp", r.Translate("Anvers", "en"))
	assert.Equal(t, "Bergen", r.Translate("Mons", "nl"))
	assert.Equal(t, "Belgique", r.Translate("België", "fr-BE"))
	assert.Equal(t, "Atlantis", r.Translate("Atlantis", "fr"))
	// unknown locale falls back to the canonical name
	assert.Equal(t, "Ghent", r.Translate("Gand", "es"))
}

func TestTranslate_RoundTrip(t *testing.T) {
	r := newTestResolver(t)

	entries := append(append([]*Entry{}, r.Countries()...), r.Cities()...)
	for _, e := range entries {
		nl := r.Translate(e.Name, "nl")
		back, ok := r.Lookup(r.Translate(nl, "en"))
		require.True(t, ok, e.Name)
		assert.Same(t, e, back, e.Name)
	}
}

func TestParseGazetteer_RejectsSharedName(t *testing.T) {
	data := []byte(`
cities:
  - {name: Mons, country: BE, localized: {nl: Bergen}}
  - {name: Bergen, country: NO, localized: {en: Bergen}}
`)
	_, err := ParseGazetteer(data, Options{}, nil, nil)
	require.Error(t, err)
}

func TestResolveCity(t *testing.T) {
	r := newTestResolver(t)

	cases := map[string]string{
		"Brussel":                     "Brussels",
		"Antwerp area":                "Antwerp",
		"Gent / Brussel":              "Ghent",
		"near Leuven, Belgium":        "Leuven",
		"Liege":                       "Liège",
		"Antwrp":                      "Antwerp",
		"nice office in Gent":         "Ghent",
		"Louvain-la-Neuve (Wallonia)": "Louvain-la-Neuve",
	}
	for in, want := range cases {
		e, ok := r.ResolveCity(in, "BE")
		require.True(t, ok, in)
		assert.Equal(t, want, e.Name, in)
	}

	_, ok := r.ResolveCity("somewhere remote", "BE")
	assert.False(t, ok)
	_, ok = r.ResolveCity("", "BE")
	assert.False(t, ok)
}

func TestResolveCity_UsesHinter(t *testing.T) {
	r, err := NewResolver(Options{}, fakeHinter{hints: []string{"mechelen"}}, nil)
	require.NoError(t, err)

	e, ok := r.ResolveCity("kantoor aan de Dijle, centrum", "BE")
	require.True(t, ok)
	assert.Equal(t, "Mechelen", e.Name)
}
