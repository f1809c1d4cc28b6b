package dataset

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// LoadStats tracks cumulative statistics for one table load.
// All operations are thread-safe using atomic counters.
type LoadStats struct {
	loaded  int64 // Rows accepted into the snapshot
	skipped int64 // Rows dropped (missing place id)
}

// NewLoadStats creates a new LoadStats instance.
func NewLoadStats() *LoadStats {
	return &LoadStats{}
}

// RecordLoaded increments the loaded counter.
func (s *LoadStats) RecordLoaded() {
	atomic.AddInt64(&s.loaded, 1)
}

// RecordSkipped increments the skipped counter.
func (s *LoadStats) RecordSkipped() {
	atomic.AddInt64(&s.skipped, 1)
}

// Loaded returns the total number of accepted rows.
func (s *LoadStats) Loaded() int64 {
	return atomic.LoadInt64(&s.loaded)
}

// Skipped returns the total number of dropped rows.
func (s *LoadStats) Skipped() int64 {
	return atomic.LoadInt64(&s.skipped)
}

// String returns a human-readable summary of the statistics.
func (s *LoadStats) String() string {
	return fmt.Sprintf("loaded=%d skipped=%d", s.Loaded(), s.Skipped())
}

// LogSummary logs a summary of load statistics at INFO level.
func (s *LoadStats) LogSummary(logger *slog.Logger, table string) {
	logger.Info("table loaded",
		"table", table,
		"loaded", s.Loaded(),
		"skipped", s.Skipped(),
	)
}
