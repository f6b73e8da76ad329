// Package metrics exposes Prometheus instrumentation for the statistics
// pipeline and the recommendation engine, with careful attention to label
// cardinality:
//
//   - metric: the statistics namespace type ("1".."8"), a small fixed set
//   - outcome: "hit" or "miss" for cache lookups
//
// All collectors are safe for concurrent use.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// statCacheLookups counts statistics cache lookups by metric and outcome.
	statCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statistics_cache_lookups_total",
			Help: "Total number of statistics cache lookups.",
		},
		[]string{"metric", "outcome"},
	)

	// statBackfillQueries counts aggregation queries run to backfill
	// uncached months, by metric.
	statBackfillQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statistics_backfill_queries_total",
			Help: "Total number of database aggregation queries run on cache miss.",
		},
		[]string{"metric"},
	)

	// recommendGenerations counts recommendation generations by trigger
	// ("no_history", "stale", "forced").
	recommendGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_generations_total",
			Help: "Total number of recommendation snapshot generations.",
		},
		[]string{"trigger"},
	)

	// recommendDuration records generation latency in seconds.
	recommendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_generation_duration_seconds",
			Help:    "Duration of recommendation generation in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		statCacheLookups,
		statBackfillQueries,
		recommendGenerations,
		recommendDuration,
	)
}

// CacheLookup records one statistics cache lookup.
func CacheLookup(metricType string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	statCacheLookups.WithLabelValues(metricType, outcome).Inc()
}

// BackfillQuery records one aggregation query run on cache miss.
func BackfillQuery(metricType string) {
	statBackfillQueries.WithLabelValues(metricType).Inc()
}

// Generation records one recommendation generation and its duration.
func Generation(trigger string, elapsed time.Duration) {
	recommendGenerations.WithLabelValues(trigger).Inc()
	recommendDuration.Observe(elapsed.Seconds())
}
