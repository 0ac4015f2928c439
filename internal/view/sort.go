// Package view computes presentation-ready orderings over the domain
// containers. Everything here is pure: same input, same output, no
// side effects.
package view

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/skydeck/skydeck/internal/weather"
)

// SortForDisplay orders records favorites-first, each partition sorted
// by name under locale-aware collation. The input slice is not
// mutated.
func SortForDisplay(records []weather.Record, favoriteIDs []string) []weather.Record {
	favSet := make(map[string]struct{}, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favSet[id] = struct{}{}
	}

	favorites := make([]weather.Record, 0, len(records))
	rest := make([]weather.Record, 0, len(records))
	for _, rec := range records {
		if _, ok := favSet[rec.ID]; ok {
			favorites = append(favorites, rec)
		} else {
			rest = append(rest, rec)
		}
	}

	coll := collate.New(language.Und)
	byName := func(s []weather.Record) {
		sort.SliceStable(s, func(i, j int) bool {
			return coll.CompareString(s[i].Name, s[j].Name) < 0
		})
	}
	byName(favorites)
	byName(rest)

	return append(favorites, rest...)
}
