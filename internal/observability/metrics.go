package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	listingsScraped   prometheus.Counter
	hotDealsDetected  prometheus.Counter
	emailsSent        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and
// the sourcing pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lotscout_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lotscout_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lotscout_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lotscout_pipeline_stage_duration_seconds",
			Help:    "Duration of each sourcing pipeline stage.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage"})

		listingsScraped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lotscout_pipeline_listings_scraped_total",
			Help: "Total number of listings fetched by scraper sources.",
		})

		hotDealsDetected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lotscout_pipeline_hot_deals_total",
			Help: "Total number of hot deals flagged for instant alerting.",
		})

		emailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lotscout_pipeline_emails_sent_total",
			Help: "Total number of emails dispatched, by kind.",
		}, []string{"kind"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			stageDuration, listingsScraped, hotDealsDetected, emailsSent)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// StageDuration exposes the pipeline stage duration histogram.
func StageDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return stageDuration
}

// ListingsScraped exposes the scraped listings counter.
func ListingsScraped() prometheus.Counter {
	RegisterMetrics()
	return listingsScraped
}

// HotDealsDetected exposes the hot deal counter.
func HotDealsDetected() prometheus.Counter {
	RegisterMetrics()
	return hotDealsDetected
}

// EmailsSent exposes the email dispatch counter.
func EmailsSent() *prometheus.CounterVec {
	RegisterMetrics()
	return emailsSent
}
