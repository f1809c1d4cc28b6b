// Package place provides the restaurant metadata model used for
// candidate matching and for joining display identity onto ranked results.
package place

// Place is a single restaurant metadata row. Only PlaceID participates in
// scoring; the remaining fields are display metadata attached to ranked
// output or used by candidate matching.
type Place struct {
	PlaceID        string `json:"place_id"`
	RestaurantName string `json:"restaurant_name"`
	PlaceName      string `json:"place_name"`
	Street         string `json:"street"`
	Ward           string `json:"ward"`
	District1      string `json:"district1"`
	District2      string `json:"district2"`
	PhotoURL       string `json:"photo_url,omitempty"`
	Website        string `json:"website,omitempty"`
}

// NameIndex builds a lookup from place id to display name, keeping the
// first occurrence when the metadata table contains duplicate rows for
// the same id.
func NameIndex(places []Place) map[string]string {
	idx := make(map[string]string, len(places))
	for _, p := range places {
		if _, seen := idx[p.PlaceID]; !seen {
			idx[p.PlaceID] = p.PlaceName
		}
	}
	return idx
}

// Index builds a lookup from place id to its metadata row, keeping the
// first occurrence per id.
func Index(places []Place) map[string]Place {
	idx := make(map[string]Place, len(places))
	for _, p := range places {
		if _, seen := idx[p.PlaceID]; !seen {
			idx[p.PlaceID] = p
		}
	}
	return idx
}
