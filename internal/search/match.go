// Package search filters the restaurant metadata table down to the
// candidate set eligible for one ranking call.
package search

import (
	"strings"

	"github.com/foodiepro/api/internal/place"
)

// MatchPlaces returns the unique place ids matching the free-text query
// and location filter, preserving table order. Matching is
// case-insensitive substring containment: the location must appear in at
// least one of street, ward, district1 or district2; the query must
// appear in the restaurant name. An empty query or location imposes no
// constraint, so two empty filters match every place.
func MatchPlaces(places []place.Place, query, location string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	location = strings.ToLower(strings.TrimSpace(location))

	seen := make(map[string]struct{}, len(places))
	ids := make([]string, 0, len(places))
	for i := range places {
		p := &places[i]
		if location != "" && !matchesLocation(p, location) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.RestaurantName), query) {
			continue
		}
		if _, dup := seen[p.PlaceID]; dup {
			continue
		}
		seen[p.PlaceID] = struct{}{}
		ids = append(ids, p.PlaceID)
	}
	return ids
}

// matchesLocation checks the location filter against the four address
// fields; any single match qualifies.
func matchesLocation(p *place.Place, location string) bool {
	for _, field := range []string{p.Street, p.Ward, p.District1, p.District2} {
		if strings.Contains(strings.ToLower(field), location) {
			return true
		}
	}
	return false
}
