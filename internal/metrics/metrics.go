// Package metrics holds the prometheus collectors of the span search server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts executed requests by kind ("spans", "search") and status.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "span_search_queries_total",
			Help: "Total number of span queries executed",
		},
		[]string{"kind", "status"},
	)
	// QueryDuration is the latency of query execution.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "span_search_query_duration_seconds",
			Help:    "Span query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	// MatchesTotal counts produced matches (spans) or hits (search).
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "span_search_matches_total",
			Help: "Total number of matches produced",
		},
		[]string{"kind"},
	)
	// RewriteCacheTotal counts rewrite cache lookups by result ("hit", "miss", "bypass").
	RewriteCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "span_search_rewrite_cache_total",
			Help: "Rewrite cache lookups",
		},
		[]string{"result"},
	)
	SegmentsFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "span_search_segments_flushed_total",
			Help: "Total number of segments flushed by the indexer",
		},
	)
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "span_search_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// Status labels a finished operation.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
