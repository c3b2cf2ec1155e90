package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Matching pipeline metrics.
var (
	MatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time to score and rank one reference document",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"algorithm"},
	)

	MatchCandidatesScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_candidates_scored_total",
			Help:      "Candidate documents scored against a reference",
		},
		[]string{"algorithm"},
	)

	MatchDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_degraded_total",
			Help:      "Match requests answered with an empty degraded result",
		},
		[]string{"algorithm"},
	)

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Document uploads by outcome",
		},
		[]string{"status"}, // ok, rejected, no_credits
	)
)

var registerMatch sync.Once

// RegisterMatchMetrics registers matching and upload metrics. Safe to call more than once.
func RegisterMatchMetrics() {
	registerMatch.Do(func() {
		prometheus.MustRegister(
			MatchDuration,
			MatchCandidatesScored,
			MatchDegradedTotal,
			UploadsTotal,
		)
	})
}
