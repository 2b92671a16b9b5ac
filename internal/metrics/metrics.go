// Package metrics defines the Prometheus instruments shared by the serving
// surfaces and the build pipeline.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mfenderov/bookrec/internal/recommend"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_recommendations_total",
			Help: "Recommendation queries by surface and outcome",
		},
		[]string{"surface", "outcome"}, // surface: "http", "mcp", "cli"
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_api_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_api_request_duration_seconds",
			Help:    "HTTP API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookrec_build_duration_seconds",
			Help:    "Duration of corpus builds in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)

	CorpusBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_corpus_books",
			Help: "Number of books in the loaded corpus",
		},
	)
)

// ObserveRecommendation records the outcome of one recommendation query.
func ObserveRecommendation(surface string, err error) {
	RecommendationsTotal.WithLabelValues(surface, Outcome(err)).Inc()
}

// Outcome maps a recommendation error onto a bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, recommend.ErrNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, recommend.ErrCorpusState):
		return "corpus_state"
	default:
		return "error"
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordBuild records a completed corpus build.
func RecordBuild(stats *recommend.BuildStats) {
	BuildDuration.Observe(stats.Duration.Seconds())
	CorpusBooks.Set(float64(stats.Books))
}
