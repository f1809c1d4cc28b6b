package ranking

import (
	"sort"

	"github.com/foodiepro/api/internal/place"
	"github.com/foodiepro/api/internal/review"
)

// RankedPlace is one row of the ranked output: the place's display
// identity joined onto its scoring record. Name is empty when the
// metadata table has no row for the place id; scored places are never
// dropped by the join.
type RankedPlace struct {
	PlaceID string
	Name    string
	Record  ScoreRecord
}

// Rank scores and orders the candidate places. It filters reviews to the
// candidate set (candidate ids may repeat; they are deduplicated first),
// partitions them by place id, scores each partition, combines the aspect
// and rating signals with the configured weights, and joins display names
// keeping exactly one row per place id.
//
// Candidate ids with zero matching reviews produce no output row, and an
// empty result is a normal outcome. Ties on the overall score break by
// place id ascending so the order is deterministic.
func Rank(places []place.Place, reviews []review.Review, candidateIDs []string, cfg Config) []RankedPlace {
	candidates := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if id != "" {
			candidates[id] = struct{}{}
		}
	}

	// Partition once: place id -> its reviews.
	groups := make(map[string][]review.Review)
	for i := range reviews {
		id := reviews[i].PlaceID
		if _, ok := candidates[id]; ok {
			groups[id] = append(groups[id], reviews[i])
		}
	}
	if len(groups) == 0 {
		return []RankedPlace{}
	}

	records := make([]ScoreRecord, 0, len(groups))
	for id, group := range groups {
		rec := ScoreReviews(id, group, cfg.MinReviewThreshold)
		rec.AspectAvg, rec.Overall = combine(rec, cfg.Weights)
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Overall != records[j].Overall {
			return records[i].Overall > records[j].Overall
		}
		return records[i].PlaceID < records[j].PlaceID
	})

	names := place.NameIndex(places)
	ranked := make([]RankedPlace, 0, len(records))
	for _, rec := range records {
		ranked = append(ranked, RankedPlace{
			PlaceID: rec.PlaceID,
			Name:    names[rec.PlaceID],
			Record:  rec,
		})
	}
	return ranked
}

// combine computes the aspect average and the overall recommendation
// score for one record. Undefined aspect scores are excluded from the
// average, not treated as zero; only a fully-undefined average or rating
// falls back to neutral zero before weighting.
func combine(rec ScoreRecord, w Weights) (aspectAvg, overall float64) {
	var sum float64
	var defined int
	for _, a := range rec.Aspects {
		if a.Defined {
			sum += a.Score
			defined++
		}
	}
	if defined > 0 {
		aspectAvg = sum / float64(defined)
	}

	rating := 0.0
	if rec.Rating.Defined {
		rating = rec.Rating.Score
	}

	overall = aspectAvg*w.Aspect + rating*w.Rating
	return aspectAvg, overall
}
