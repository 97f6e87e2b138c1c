package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Streaming turn outcomes
	StreamTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "stream_turns_total",
			Help:      "Streaming turns by type and outcome",
		},
		[]string{"turn_type", "outcome"},
	)

	// Streaming turn duration
	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "stream_duration_seconds",
			Help:      "Streaming turn duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"turn_type"},
	)

	// Time to first token (streaming)
	FirstTokenDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "first_token_seconds",
			Help:      "Time to first token for streaming turns",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"turn_type"},
	)

	// Active streaming connections gauge
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "active_streams",
			Help:      "Currently active streaming connections",
		},
		[]string{"turn_type"},
	)

	// Web search calls
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "search_requests_total",
			Help:      "Web search API calls by status",
		},
		[]string{"status"},
	)

	// Provider errors
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "provider_errors_total",
			Help:      "Total provider call failures",
		},
		[]string{"provider", "error_type"},
	)

	// Conversations
	ConversationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "conversations_created_total",
			Help:      "Total conversations created",
		},
	)

	// Uploads
	FilesUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "abby",
			Subsystem: "server",
			Name:      "files_uploaded_total",
			Help:      "Total files uploaded",
		},
	)
)

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordStreamTurn records the outcome and duration of a streaming turn
func RecordStreamTurn(turnType, outcome string, durationSec float64) {
	StreamTurnsTotal.WithLabelValues(turnType, outcome).Inc()
	StreamDuration.WithLabelValues(turnType).Observe(durationSec)
}

// RecordFirstToken records time to first token for a streaming turn
func RecordFirstToken(turnType string, durationSec float64) {
	FirstTokenDuration.WithLabelValues(turnType).Observe(durationSec)
}

// IncrementActiveStreams increments the active streams gauge
func IncrementActiveStreams(turnType string) {
	ActiveStreams.WithLabelValues(turnType).Inc()
}

// DecrementActiveStreams decrements the active streams gauge
func DecrementActiveStreams(turnType string) {
	ActiveStreams.WithLabelValues(turnType).Dec()
}

// RecordSearch records a web search API call
func RecordSearch(status string) {
	if status == "" {
		status = "unknown"
	}
	SearchRequestsTotal.WithLabelValues(status).Inc()
}

// RecordProviderError records a provider error
func RecordProviderError(provider, errorType string) {
	ProviderErrorsTotal.WithLabelValues(provider, errorType).Inc()
}
