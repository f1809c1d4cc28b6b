package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
)

// Weights holds the combination weights for the two per-place signals.
// They are expected to sum to 1.
type Weights struct {
	Aspect float64 `json:"aspect"` // Weight for the averaged aspect sentiment score (default: 0.7)
	Rating float64 `json:"rating"` // Weight for the normalized rating score (default: 0.3)
}

// Config holds the full ranking configuration for one ranking call.
type Config struct {
	// MinReviewThreshold is the opinion/review volume T at which the
	// confidence weight reaches 1. Must be positive.
	MinReviewThreshold float64 `json:"min_review_threshold"`

	Weights Weights `json:"weights"`
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version            string  `json:"version"` // Config version for future compatibility
	MinReviewThreshold float64 `json:"min_review_threshold"`
	Weights            Weights `json:"weights"`
}

// Default calibration values.
const (
	DefaultMinReviewThreshold = 50.0
	DefaultAspectWeight       = 0.7
	DefaultRatingWeight       = 0.3
)

// DefaultConfig returns the default ranking configuration.
//
// Overall formula: overall = aspect_avg*0.7 + rating*0.3
//   - The aspect signal dominates: tagged opinions carry more information
//     than a bare star count.
//   - The rating signal stabilizes places with few extracted opinions.
//   - With both signals in [-1, 1] the overall score stays in [-1, 1].
func DefaultConfig() Config {
	return Config{
		MinReviewThreshold: DefaultMinReviewThreshold,
		Weights: Weights{
			Aspect: DefaultAspectWeight,
			Rating: DefaultRatingWeight,
		},
	}
}

// Validate checks the configuration for values the scorer cannot work with.
func (c Config) Validate() error {
	if c.MinReviewThreshold <= 0 {
		return fmt.Errorf("min_review_threshold must be positive, got %g", c.MinReviewThreshold)
	}
	if c.Weights.Aspect < 0 || c.Weights.Rating < 0 {
		return fmt.Errorf("weights must be non-negative, got aspect=%g rating=%g", c.Weights.Aspect, c.Weights.Rating)
	}
	if s := c.Weights.Aspect + c.Weights.Rating; math.Abs(s-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %g", s)
	}
	return nil
}

// LoadCalibration loads the ranking configuration from a JSON calibration
// file. Partial files merge with defaults for graceful degradation; on any
// error the defaults are returned alongside the error so callers can keep
// serving.
func LoadCalibration(filePath string) (Config, error) {
	if filePath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultConfig(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var calibration CalibrationConfig
	if err := json.Unmarshal(data, &calibration); err != nil {
		slog.Warn("failed to parse ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultConfig(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	merged := MergeCalibration(DefaultConfig(), calibration)
	if err := merged.Validate(); err != nil {
		slog.Warn("invalid ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultConfig(), fmt.Errorf("invalid calibration: %w", err)
	}

	logCalibrationOverrides(DefaultConfig(), merged)
	return merged, nil
}

// MergeCalibration merges a loaded calibration over the base configuration.
// Only non-zero override values are applied, allowing partial files.
func MergeCalibration(base Config, override CalibrationConfig) Config {
	result := base

	if override.MinReviewThreshold != 0 {
		result.MinReviewThreshold = override.MinReviewThreshold
	}
	if override.Weights.Aspect != 0 {
		result.Weights.Aspect = override.Weights.Aspect
	}
	if override.Weights.Rating != 0 {
		result.Weights.Rating = override.Weights.Rating
	}

	return result
}

// logCalibrationOverrides logs which values were overridden from defaults.
func logCalibrationOverrides(defaults, loaded Config) {
	var overrides []string

	if loaded.MinReviewThreshold != defaults.MinReviewThreshold {
		overrides = append(overrides, fmt.Sprintf("min_review_threshold: %.0f -> %.0f",
			defaults.MinReviewThreshold, loaded.MinReviewThreshold))
	}
	if loaded.Weights.Aspect != defaults.Weights.Aspect {
		overrides = append(overrides, fmt.Sprintf("weights.aspect: %.2f -> %.2f",
			defaults.Weights.Aspect, loaded.Weights.Aspect))
	}
	if loaded.Weights.Rating != defaults.Weights.Rating {
		overrides = append(overrides, fmt.Sprintf("weights.rating: %.2f -> %.2f",
			defaults.Weights.Rating, loaded.Weights.Rating))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
