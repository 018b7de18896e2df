package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry           *prometheus.Registry
	NavigationsTotal   *prometheus.CounterVec
	NavigationDuration prometheus.Histogram
	ItemsTotal         prometheus.Counter
	RetriesTotal       prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
	SnapshotsTotal     prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	navigations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_navigations_total",
			Help: "Total browser navigations by page kind.",
		},
		[]string{"kind"},
	)
	navigationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_navigation_duration_seconds",
			Help:    "Document load latency for browser navigations.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_extracted_total",
			Help: "Total number of watch detail pages extracted.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Total number of retry attempts scheduled.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of crawl errors by type.",
		},
		[]string{"error_type"},
	)
	snapshots := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_snapshots_total",
			Help: "Total number of debugging artifacts written.",
		},
	)

	registry.MustRegister(navigations, navigationDuration, items, retries, errorsTotal, snapshots)

	return &Metrics{
		Registry:           registry,
		NavigationsTotal:   navigations,
		NavigationDuration: navigationDuration,
		ItemsTotal:         items,
		RetriesTotal:       retries,
		ErrorsTotal:        errorsTotal,
		SnapshotsTotal:     snapshots,
	}
}

// IncNavigation increments the navigations counter for a page kind.
func (m *Metrics) IncNavigation(kind string) {
	if m == nil {
		return
	}
	m.NavigationsTotal.WithLabelValues(kind).Inc()
}

// ObserveNavigation records a document load duration.
func (m *Metrics) ObserveNavigation(d time.Duration) {
	if m == nil {
		return
	}
	m.NavigationDuration.Observe(d.Seconds())
}

// IncItems increments the extracted items counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsTotal.Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncSnapshot increments the debugging artifacts counter.
func (m *Metrics) IncSnapshot() {
	if m == nil {
		return
	}
	m.SnapshotsTotal.Inc()
}
