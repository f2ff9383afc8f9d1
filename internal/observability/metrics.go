package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	resultCardsTotal      *prometheus.CounterVec
	printDocumentsTotal   *prometheus.CounterVec
	printRenderSeconds    prometheus.Histogram
	resultEventsPublished *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the results API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_requests_total",
			Help: "Total number of results API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "results_latency_seconds",
			Help:    "Latency distribution for results API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_errors_total",
			Help: "Total number of error responses returned by results endpoints.",
		}, []string{"method", "route", "status"})

		resultCardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "result_cards_assembled_total",
			Help: "Result cards assembled, by access level.",
		}, []string{"access"})

		printDocumentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "print_cards_emitted_total",
			Help: "Cards emitted to print surfaces, by print mode.",
		}, []string{"mode"})

		printRenderSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "print_render_seconds",
			Help:    "Time taken to render a print document.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		})

		resultEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "result_events_published_total",
			Help: "Result sheet events published to brokers.",
		}, []string{"type"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			resultCardsTotal,
			printDocumentsTotal,
			printRenderSeconds,
			resultEventsPublished,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error response counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ResultCards exposes the assembled card counter.
func ResultCards() *prometheus.CounterVec {
	RegisterMetrics()
	return resultCardsTotal
}

// PrintDocuments exposes the emitted card counter.
func PrintDocuments() *prometheus.CounterVec {
	RegisterMetrics()
	return printDocumentsTotal
}

// PrintRenderDuration exposes the render time histogram.
func PrintRenderDuration() prometheus.Histogram {
	RegisterMetrics()
	return printRenderSeconds
}

// ResultEventsPublished exposes the result event counter.
func ResultEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return resultEventsPublished
}
