// Package review provides the review model and opinion/rating parsing
// for aspect-based sentiment scoring.
package review

// Aspect is one of the fixed evaluation dimensions a review's opinions
// are tagged against.
type Aspect int

// The three aspects extracted from review text.
const (
	AspectFood Aspect = iota
	AspectPlace
	AspectPrice
)

// Aspects returns all aspects in their canonical order.
func Aspects() []Aspect {
	return []Aspect{AspectFood, AspectPlace, AspectPrice}
}

// String returns the column name used for the aspect in the review dataset.
func (a Aspect) String() string {
	switch a {
	case AspectFood:
		return "Food"
	case AspectPlace:
		return "Place"
	case AspectPrice:
		return "Price"
	default:
		return "Unknown"
	}
}

// Review is a single review row. Each aspect field holds a
// separator-delimited sequence of tagged opinion tokens, or "" when the
// review expresses no opinion on that aspect. Rating is the raw rating
// field and may be non-numeric (e.g. "4.5 stars") or empty.
type Review struct {
	PlaceID string `json:"place_id"`
	Food    string `json:"food"`
	Place   string `json:"place"`
	Price   string `json:"price"`
	Rating  string `json:"rating"`
}

// Segment returns the opinion-segment field for the given aspect.
func (r *Review) Segment(a Aspect) string {
	switch a {
	case AspectFood:
		return r.Food
	case AspectPlace:
		return r.Place
	case AspectPrice:
		return r.Price
	default:
		return ""
	}
}
