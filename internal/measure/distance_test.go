package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDistance(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"18km 25min", "18"},
		{"45 minutes 8km", "8"},
		{"20-30 km", "20-30"},
		{"15", "15"},
		{"12,5 km", "12.5"},
		{"35 min (20 kilometer)", "20"},
		{"10 miles", "10"},
		{"about 15, 25 min by train", "15"},
		{"40 - 50", "40-50"},
		{"around 7 (bike)", "7"},
		{"22 kilomètres", "22"},
	}
	for _, tc := range cases {
		got, ok := ExtractDistance(tc.in)
		require.True(t, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestExtractDistance_Null(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"far away",
		"30 minutes",
		"1h30",
		"1u15 met de trein",
		"600 km",
		"100-900",
	} {
		_, ok := ExtractDistance(in)
		assert.False(t, ok, "%q", in)
	}
}

func TestExtractor_CustomBound(t *testing.T) {
	e := NewExtractor(50)

	_, ok := e.Extract("60 km")
	assert.False(t, ok)

	got, ok := e.Extract("45km")
	require.True(t, ok)
	assert.Equal(t, "45", got)
}

func TestExtractDistance_Deterministic(t *testing.T) {
	first, _ := ExtractDistance("45 minutes 8km")
	for i := 0; i < 10; i++ {
		again, _ := ExtractDistance("45 minutes 8km")
		assert.Equal(t, first, again)
	}
}
