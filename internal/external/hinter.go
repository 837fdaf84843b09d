// Package external wraps optional native address tooling.
package external

// CityHinter proposes substrings of a messy location ("near Antwerp
// station, BE") that are likely city names.
type CityHinter interface {
	CityHints(raw string) []string
}
