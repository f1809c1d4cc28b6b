package ranking

import (
	"fmt"
	"testing"

	"github.com/foodiepro/api/internal/place"
	"github.com/foodiepro/api/internal/review"
)

// BenchmarkConfidence benchmarks the confidence weight calculation.
func BenchmarkConfidence(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Confidence(12, DefaultMinReviewThreshold)
	}
}

// BenchmarkScoreReviews benchmarks scoring one place partition.
func BenchmarkScoreReviews(b *testing.B) {
	reviews := benchReviews("p1", 50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ScoreReviews("p1", reviews, DefaultMinReviewThreshold)
	}
}

// BenchmarkRank benchmarks the full ranking pipeline over a mid-sized dataset.
func BenchmarkRank(b *testing.B) {
	const numPlaces = 200
	cfg := DefaultConfig()

	places := make([]place.Place, 0, numPlaces)
	reviews := make([]review.Review, 0, numPlaces*20)
	candidates := make([]string, 0, numPlaces)
	for i := 0; i < numPlaces; i++ {
		id := fmt.Sprintf("place-%03d", i)
		places = append(places, place.Place{
			PlaceID:        id,
			RestaurantName: "Restaurant " + id,
		})
		reviews = append(reviews, benchReviews(id, 20)...)
		candidates = append(candidates, id)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank(places, reviews, candidates, cfg)
	}
}

func benchReviews(placeID string, n int) []review.Review {
	reviews := make([]review.Review, 0, n)
	for i := 0; i < n; i++ {
		reviews = append(reviews, review.Review{
			PlaceID: placeID,
			Food:    "pho was excellent [P] | broth a bit salty [N]",
			Place:   "cozy seating [P]",
			Price:   "fair prices [NEU]",
			Rating:  "Rated 4.0 out of 5",
		})
	}
	return reviews
}
