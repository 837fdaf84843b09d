// Package search indexes canonical records in Meilisearch for dashboards.
package search

import (
	"fmt"
	"strings"
)

// FilterEquals builds `attr = "value"`. An empty value yields no filter.
func FilterEquals(attr, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s = %q", attr, value)
}

// FilterRange builds an inclusive numeric range; a zero bound is open.
func FilterRange(attr string, min, max int) string {
	switch {
	case min > 0 && max > 0:
		return fmt.Sprintf("%s %d TO %d", attr, min, max)
	case min > 0:
		return fmt.Sprintf("%s >= %d", attr, min)
	case max > 0:
		return fmt.Sprintf("%s <= %d", attr, max)
	}
	return ""
}

// FilterAnd joins the non-empty filters with AND.
func FilterAnd(filters ...string) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " AND ")
}
