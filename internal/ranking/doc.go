// Package ranking computes confidence-adjusted restaurant scores from
// aspect-tagged review opinions and raw star ratings, and combines them
// into a single ranked order.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	cfg, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		slog.Warn("using default ranking calibration", "error", err)
//	}
//
//	// Rank a candidate set
//	ranked := ranking.Rank(snapshot.Places, snapshot.Reviews, candidateIDs, cfg)
//
// Scoring:
//
// Each aspect (Food, Place, Price) is scored as (P-N)/total damped by a
// logarithmic confidence weight min(1, ln(1+total)/ln(1+T)), where T is
// the configured minimum-review threshold. The rating signal normalizes
// the mean 1-5 star rating onto [-1, 1] and applies the same damping.
// Aspects with zero classified opinions stay undefined and are excluded
// from the aspect average; only after averaging does the neutral-fallback
// policy replace a still-undefined average or rating score with zero.
//
// Calibration:
//
// The calibration system allows deploy-time tuning of the combination
// weights and the confidence threshold via a JSON file loaded at startup.
// Partial files merge with defaults. See configs/ranking.calibration.json.
package ranking
