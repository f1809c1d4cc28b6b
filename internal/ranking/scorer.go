package ranking

import (
	"math"

	"github.com/foodiepro/api/internal/review"
)

// AspectScore holds one confidence-adjusted signal score. Defined is false
// when the signal had zero evidence (no classified opinions, or no
// parseable rating numerals), in which case Score is meaningless.
type AspectScore struct {
	Score   float64 `json:"score"`
	Defined bool    `json:"defined"`
	Count   int     `json:"count"`
}

// ScoreRecord is the fixed-shape per-place scoring result. It exists only
// for the duration of one ranking call and is never cached or persisted.
// Aspects is indexed by review.Aspect. Rating.Count is the number of
// reviews that yielded a usable rating numeral.
type ScoreRecord struct {
	PlaceID   string
	Aspects   [3]AspectScore
	Rating    AspectScore
	AspectAvg float64
	Overall   float64
}

// Confidence computes the logarithmic damping weight for a signal backed
// by n observations against threshold t. It grows from 0 toward 1 as n
// approaches t and is capped at 1 beyond it.
func Confidence(n int, t float64) float64 {
	if n <= 0 {
		return 0
	}
	return math.Min(1, math.Log(1+float64(n))/math.Log(1+t))
}

// round4 rounds to 4 decimal places, matching the precision the scores
// are reported at.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// ScoreReviews scores all reviews belonging to a single place. It is a
// pure function of its inputs and never fails: malformed opinion tokens
// and rating values are excluded from the relevant counts rather than
// raising an error.
func ScoreReviews(placeID string, reviews []review.Review, threshold float64) ScoreRecord {
	rec := ScoreRecord{PlaceID: placeID}

	for _, aspect := range review.Aspects() {
		var pos, neg, neu int
		for i := range reviews {
			for _, token := range review.SplitOpinions(reviews[i].Segment(aspect)) {
				switch review.ClassifySentiment(token) {
				case review.SentimentPositive:
					pos++
				case review.SentimentNegative:
					neg++
				case review.SentimentNeutral:
					neu++
				}
				// Unclassified tokens are excluded from the total.
			}
		}

		total := pos + neg + neu
		if total == 0 {
			rec.Aspects[aspect] = AspectScore{}
			continue
		}

		net := float64(pos-neg) / float64(total)
		rec.Aspects[aspect] = AspectScore{
			Score:   round4(net * Confidence(total, threshold)),
			Defined: true,
			Count:   total,
		}
	}

	var sum float64
	var n int
	for i := range reviews {
		if v, ok := review.ExtractRating(reviews[i].Rating); ok {
			sum += v
			n++
		}
	}

	if n > 0 {
		// Map the 1-5 scale linearly onto [-1, 1], centered at 3.
		normalized := (sum/float64(n) - 3) / 2
		rec.Rating = AspectScore{
			Score:   round4(normalized * Confidence(n, threshold)),
			Defined: true,
			Count:   n,
		}
	}

	return rec
}
