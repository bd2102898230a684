package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	latencySeconds        *prometheus.HistogramVec
	errorsTotal           *prometheus.CounterVec
	transitionsTotal      *prometheus.CounterVec
	sessionJoinsTotal     *prometheus.CounterVec
	transcriptionLatency  prometheus.Histogram
	transcriptionFailures prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the workbook API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workbook_requests_total",
			Help: "Total number of workbook API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workbook_latency_seconds",
			Help:    "Latency distribution for workbook API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workbook_errors_total",
			Help: "Total number of error responses returned by the workbook API.",
		}, []string{"method", "route", "status"})

		transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workbook_progress_transitions_total",
			Help: "Progress state transitions by outcome.",
		}, []string{"to", "outcome"})

		sessionJoinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workbook_session_joins_total",
			Help: "Live session join attempts by outcome.",
		}, []string{"outcome"})

		transcriptionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "workbook_transcription_seconds",
			Help:    "Latency distribution for audio note transcription.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		})

		transcriptionFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workbook_transcription_failures_total",
			Help: "Total number of failed transcription attempts.",
		})

		prometheus.MustRegister(
			requestsTotal, latencySeconds, errorsTotal,
			transitionsTotal, sessionJoinsTotal,
			transcriptionLatency, transcriptionFailures,
		)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the error response counter.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// Transitions exposes the progress transition counter.
func Transitions() *prometheus.CounterVec {
	RegisterMetrics()
	return transitionsTotal
}

// SessionJoins exposes the join attempt counter.
func SessionJoins() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionJoinsTotal
}

// TranscriptionLatency exposes the transcription latency histogram.
func TranscriptionLatency() prometheus.Histogram {
	RegisterMetrics()
	return transcriptionLatency
}

// TranscriptionFailures exposes the failed transcription counter.
func TranscriptionFailures() prometheus.Counter {
	RegisterMetrics()
	return transcriptionFailures
}
