package dataset

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/foodiepro/api/internal/place"
	"github.com/foodiepro/api/internal/review"
)

// Snapshot is an immutable pair of loaded tables. Ranking calls operate
// on exactly one snapshot for their whole duration, so a concurrent
// reload can never expose a partially updated table to an in-flight
// call. The slices must not be mutated after the snapshot is published.
type Snapshot struct {
	Places   []place.Place
	Reviews  []review.Review
	LoadedAt time.Time
}

// NewSnapshot builds a snapshot stamped with the current time.
func NewSnapshot(places []place.Place, reviews []review.Review) *Snapshot {
	return &Snapshot{
		Places:   places,
		Reviews:  reviews,
		LoadedAt: time.Now().UTC(),
	}
}

// Store holds the current snapshot and swaps it atomically on reload.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty snapshot store. Current returns nil until
// the first Swap.
func NewStore() *Store {
	return &Store{}
}

// Current returns the currently published snapshot, or nil when no data
// has been loaded yet.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap publishes a new snapshot. In-flight readers keep the snapshot
// they already loaded.
func (s *Store) Swap(snap *Snapshot) {
	s.current.Store(snap)
}

// Loader supplies a fresh snapshot from the backing source (CSV files or
// Postgres). Implementations must build completely new slices so the
// previous snapshot stays immutable.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// CSVLoader loads snapshots from a pair of CSV files.
type CSVLoader struct {
	PlacesPath  string
	ReviewsPath string
}

// Load reads both tables and returns a fresh snapshot. A missing
// required column fails the whole load.
func (l *CSVLoader) Load(_ context.Context) (*Snapshot, error) {
	placeStats := NewLoadStats()
	places, err := LoadPlacesCSV(l.PlacesPath, placeStats)
	if err != nil {
		return nil, err
	}

	reviewStats := NewLoadStats()
	reviews, err := LoadReviewsCSV(l.ReviewsPath, reviewStats)
	if err != nil {
		return nil, err
	}

	placeStats.LogSummary(slog.Default(), "places")
	reviewStats.LogSummary(slog.Default(), "reviews")
	return NewSnapshot(places, reviews), nil
}
