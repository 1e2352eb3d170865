package app

import (
	"slices"
	"strings"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

// CacheKey derives the deterministic cache key for a sanitized request:
// widget type plus the normalized parameters in stable name order. Two
// logically identical requests always map to the same key; key cardinality
// is bounded by the distinct (widget, params) tuples actually requested, so
// no hashing is needed.
func CacheKey(t dashboard.WidgetType, p dashboard.Params) string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(string(t))
	sep := "?"
	for _, name := range names {
		b.WriteString(sep)
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(p[name])
		sep = "&"
	}
	return b.String()
}
