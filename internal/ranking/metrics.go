package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankDuration    = "ranking_duration_seconds"
	MetricRankCallsTotal  = "ranking_calls_total"
	MetricRankedPlaces    = "ranking_ranked_places"
	MetricCandidatePlaces = "ranking_candidate_places"
)

// Metrics contains Prometheus metrics for ranking operations.
// All operations are thread-safe.
type Metrics struct {
	rankDuration    prometheus.Histogram
	rankCalls       *prometheus.CounterVec
	rankedPlaces    prometheus.Histogram
	candidatePlaces prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRankDuration,
				Help:    "Duration of ranking calls in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),
		rankCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankCallsTotal,
				Help: "Total number of ranking calls by outcome",
			},
			[]string{"outcome"},
		),
		rankedPlaces: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRankedPlaces,
				Help:    "Number of places returned per ranking call",
				Buckets: prometheus.ExponentialBuckets(1, 4, 6), // 1 to ~1000
			},
		),
		candidatePlaces: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCandidatePlaces,
				Help:    "Number of candidate places per ranking call",
				Buckets: prometheus.ExponentialBuckets(1, 4, 6),
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.rankDuration,
		m.rankCalls,
		m.rankedPlaces,
		m.candidatePlaces,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRank records one ranking call.
// outcome: "ranked" when at least one place was returned, "empty" otherwise.
func (m *Metrics) ObserveRank(durationSeconds float64, candidates, ranked int) {
	outcome := "ranked"
	if ranked == 0 {
		outcome = "empty"
	}
	m.rankCalls.WithLabelValues(outcome).Inc()
	m.rankDuration.Observe(durationSeconds)
	m.candidatePlaces.Observe(float64(candidates))
	m.rankedPlaces.Observe(float64(ranked))
}
