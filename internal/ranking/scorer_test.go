package ranking

import (
	"math"
	"testing"

	"github.com/foodiepro/api/internal/review"
)

const testThreshold = 50.0

// TestConfidence tests the logarithmic damping weight.
func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		expected float64
	}{
		{name: "zero observations", n: 0, expected: 0},
		{name: "one observation", n: 1, expected: math.Log(2) / math.Log(51)},
		{name: "at threshold", n: 50, expected: 1},
		{name: "above threshold capped", n: 500, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.n, testThreshold)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

// TestConfidenceMonotonic verifies the weight grows with evidence volume
// until it saturates at 1.
func TestConfidenceMonotonic(t *testing.T) {
	prev := Confidence(1, testThreshold)
	for n := 2; n <= 50; n++ {
		cur := Confidence(n, testThreshold)
		if cur <= prev {
			t.Fatalf("confidence not strictly increasing at n=%d: %f <= %f", n, cur, prev)
		}
		prev = cur
	}
}

// TestScoreReviewsConcreteScenario verifies the exact scores for a place
// with Food opinions [P,P,N], one Place opinion [P], no Price opinions,
// and ratings [4, 5] at threshold 50.
func TestScoreReviewsConcreteScenario(t *testing.T) {
	reviews := []review.Review{
		{PlaceID: "E1", Food: "great pho [P] | generous portions [P]", Place: "cozy spot [P]", Rating: "4"},
		{PlaceID: "E1", Food: "bland broth [N]", Rating: "5"},
	}

	rec := ScoreReviews("E1", reviews, testThreshold)

	wantFood := round4((2.0 - 1.0) / 3.0 * math.Min(1, math.Log(4)/math.Log(51)))
	food := rec.Aspects[review.AspectFood]
	if !food.Defined || food.Count != 3 {
		t.Fatalf("food: expected defined with count 3, got %+v", food)
	}
	if math.Abs(food.Score-wantFood) > 1e-9 {
		t.Errorf("food score: expected %f, got %f", wantFood, food.Score)
	}

	wantPlace := round4(1.0 * math.Min(1, math.Log(2)/math.Log(51)))
	pl := rec.Aspects[review.AspectPlace]
	if !pl.Defined || pl.Count != 1 {
		t.Fatalf("place: expected defined with count 1, got %+v", pl)
	}
	if math.Abs(pl.Score-wantPlace) > 1e-9 {
		t.Errorf("place score: expected %f, got %f", wantPlace, pl.Score)
	}

	// No price opinions: score undefined and count zero, not a zero score.
	price := rec.Aspects[review.AspectPrice]
	if price.Defined || price.Count != 0 {
		t.Errorf("price: expected undefined with count 0, got %+v", price)
	}

	wantRating := round4((4.5 - 3) / 2 * math.Min(1, math.Log(3)/math.Log(51)))
	if !rec.Rating.Defined || rec.Rating.Count != 2 {
		t.Fatalf("rating: expected defined with count 2, got %+v", rec.Rating)
	}
	if math.Abs(rec.Rating.Score-wantRating) > 1e-9 {
		t.Errorf("rating score: expected %f, got %f", wantRating, rec.Rating.Score)
	}
}

// TestScoreReviewsSentimentMonotonicity verifies that adding positive
// opinions for fixed N and NEU strictly increases the aspect score.
func TestScoreReviewsSentimentMonotonicity(t *testing.T) {
	build := func(pos int) []review.Review {
		segment := "bad [N] | meh [NEU]"
		for i := 0; i < pos; i++ {
			segment += " | good [P]"
		}
		return []review.Review{{PlaceID: "p", Food: segment}}
	}

	prev := ScoreReviews("p", build(1), testThreshold).Aspects[review.AspectFood].Score
	for pos := 2; pos <= 10; pos++ {
		cur := ScoreReviews("p", build(pos), testThreshold).Aspects[review.AspectFood].Score
		if cur <= prev {
			t.Fatalf("score not strictly increasing at pos=%d: %f <= %f", pos, cur, prev)
		}
		prev = cur
	}
}

// TestScoreReviewsConfidenceFloor verifies that one opinion per aspect
// yields a smaller-magnitude score than threshold-many opinions of the
// same polarity.
func TestScoreReviewsConfidenceFloor(t *testing.T) {
	sparse := ScoreReviews("p", []review.Review{{PlaceID: "p", Food: "good [P]"}}, testThreshold)

	segment := "good [P]"
	for i := 1; i < int(testThreshold); i++ {
		segment += " | good [P]"
	}
	dense := ScoreReviews("p", []review.Review{{PlaceID: "p", Food: segment}}, testThreshold)

	sparseScore := sparse.Aspects[review.AspectFood].Score
	denseScore := dense.Aspects[review.AspectFood].Score
	if math.Abs(sparseScore) >= math.Abs(denseScore) {
		t.Errorf("expected sparse |%f| < dense |%f|", sparseScore, denseScore)
	}
	if denseScore != 1 {
		t.Errorf("expected saturated score 1 at threshold volume, got %f", denseScore)
	}
}

// TestScoreReviewsZeroEvidence verifies empty and malformed input yields
// fully undefined signals without error.
func TestScoreReviewsZeroEvidence(t *testing.T) {
	tests := []struct {
		name    string
		reviews []review.Review
	}{
		{name: "no reviews", reviews: nil},
		{name: "blank fields", reviews: []review.Review{{PlaceID: "p"}}},
		{
			name: "unclassifiable content",
			reviews: []review.Review{
				{PlaceID: "p", Food: "no tag here", Place: "strange [X]", Rating: "unrated"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ScoreReviews("p", tt.reviews, testThreshold)
			for _, aspect := range review.Aspects() {
				if rec.Aspects[aspect].Defined {
					t.Errorf("%s: expected undefined", aspect)
				}
				if rec.Aspects[aspect].Count != 0 {
					t.Errorf("%s: expected count 0, got %d", aspect, rec.Aspects[aspect].Count)
				}
			}
			if rec.Rating.Defined || rec.Rating.Count != 0 {
				t.Errorf("rating: expected undefined with count 0, got %+v", rec.Rating)
			}
		})
	}
}

// TestScoreReviewsMalformedRatingsExcluded verifies rows without an
// extractable numeral are dropped from the rating count, not zeroed.
func TestScoreReviewsMalformedRatingsExcluded(t *testing.T) {
	reviews := []review.Review{
		{PlaceID: "p", Rating: "5 stars"},
		{PlaceID: "p", Rating: "no rating"},
		{PlaceID: "p", Rating: ""},
		{PlaceID: "p", Rating: "3"},
	}

	rec := ScoreReviews("p", reviews, testThreshold)
	if rec.Rating.Count != 2 {
		t.Fatalf("expected 2 usable ratings, got %d", rec.Rating.Count)
	}

	// mean of 5 and 3 is 4 -> normalized 0.5
	want := round4(0.5 * math.Min(1, math.Log(3)/math.Log(51)))
	if math.Abs(rec.Rating.Score-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, rec.Rating.Score)
	}
}

// TestScoreReviewsScoreBounds verifies aspect and rating scores stay in
// [-1, 1] across polarities.
func TestScoreReviewsScoreBounds(t *testing.T) {
	tests := []struct {
		name   string
		review review.Review
	}{
		{name: "all positive", review: review.Review{PlaceID: "p", Food: "a [P] | b [P]", Rating: "5"}},
		{name: "all negative", review: review.Review{PlaceID: "p", Food: "a [N] | b [N]", Rating: "1"}},
		{name: "mixed", review: review.Review{PlaceID: "p", Food: "a [P] | b [N] | c [NEU]", Rating: "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ScoreReviews("p", []review.Review{tt.review}, testThreshold)
			food := rec.Aspects[review.AspectFood].Score
			if food < -1 || food > 1 {
				t.Errorf("food score out of range: %f", food)
			}
			if rec.Rating.Score < -1 || rec.Rating.Score > 1 {
				t.Errorf("rating score out of range: %f", rec.Rating.Score)
			}
		})
	}
}
