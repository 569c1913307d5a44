// Package metrics provides Prometheus collectors for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "codecounselor"

var (
	// HTTPRequests counts handled HTTP requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes handler latency, streaming time included.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"method", "path"},
	)

	// ChatRejections counts /chat requests refused before streaming.
	ChatRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "rejections_total",
			Help:      "Chat requests rejected before streaming started",
		},
		[]string{"reason"},
	)

	// StreamsStarted counts relay streams opened.
	StreamsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "streams_started_total",
			Help:      "Relay streams started",
		},
	)

	// ChunksForwarded counts non-empty upstream chunks written to clients.
	ChunksForwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "chunks_forwarded_total",
			Help:      "Upstream text chunks forwarded to clients",
		},
	)

	// EmptyResponses counts streams that finished without any text.
	EmptyResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "empty_responses_total",
			Help:      "Upstream streams that produced no text",
		},
	)

	// UpstreamErrors counts classified upstream failures.
	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "upstream_errors_total",
			Help:      "Upstream failures by category",
		},
		[]string{"category"},
	)

	// ClientDisconnects counts streams abandoned because the client left.
	ClientDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "client_disconnects_total",
			Help:      "Streams abandoned after the client disconnected",
		},
	)
)
