//go:build !libpostal

package external

// NewCityHinter returns nil when libpostal is not compiled in; callers fall
// back to their own splitting.
func NewCityHinter(languages ...string) CityHinter {
	return nil
}

// Enabled reports whether libpostal is compiled in.
func Enabled() bool { return false }
