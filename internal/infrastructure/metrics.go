package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the load pipeline and
// the query surface.
type Metrics struct {
	registry *prometheus.Registry

	RowsRead          prometheus.Counter
	RowsUnique        prometheus.Gauge
	DuplicatesDropped prometheus.Counter
	FilesProcessed    prometheus.Counter
	FilesSkipped      prometheus.Counter
	CostCorrections   *prometheus.CounterVec
	LoadDuration      prometheus.Histogram
	LoadsTotal        *prometheus.CounterVec
	QueriesTotal      *prometheus.CounterVec
}

// NewMetrics creates the pipeline metrics on a private registry so
// tests can instantiate it repeatedly without collisions.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RowsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "thrive_load_rows_read_total",
			Help: "Raw rows read from source files across all loads.",
		}),
		RowsUnique: factory.NewGauge(prometheus.GaugeOpts{
			Name: "thrive_dataset_rows",
			Help: "Unique rows in the currently published snapshot.",
		}),
		DuplicatesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "thrive_load_duplicates_dropped_total",
			Help: "Rows dropped by the merge pass as duplicates of a more recent export.",
		}),
		FilesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "thrive_load_files_processed_total",
			Help: "Source files merged successfully.",
		}),
		FilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "thrive_load_files_skipped_total",
			Help: "Source files skipped due to parse errors.",
		}),
		CostCorrections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "thrive_cost_corrections_total",
			Help: "Rows whose cost data was rewritten, by brand and year.",
		}, []string{"brand", "year"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "thrive_load_duration_seconds",
			Help:    "Wall time of a full load cycle.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		LoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "thrive_loads_total",
			Help: "Load cycles by outcome.",
		}, []string{"status"}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "thrive_queries_total",
			Help: "Store queries served, by operation.",
		}, []string{"operation"}),
	}
}

// Handler returns the HTTP handler exposing this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
