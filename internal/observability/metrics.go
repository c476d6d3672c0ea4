package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline.
type Metrics struct {
	RecordsFetched  prometheus.Counter
	RecordsAssessed prometheus.Counter
	AssessErrors    prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Upstream API metrics.
	APIRequests    *prometheus.CounterVec   // labels: source={neows,sbdb,horizons,fireball,socrata}, outcome={success,error}
	APIDuration    *prometheus.HistogramVec // labels: source
	SBDBCache      *prometheus.CounterVec   // labels: result={hit,miss}
	SBDBEnrichment prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "records_fetched_total",
			Help:      "Total catalog rows fetched from the NeoWs feed.",
		}),
		RecordsAssessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "records_assessed_total",
			Help:      "Total hazard assessments written to the sink.",
		}),
		AssessErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "assess_errors_total",
			Help:      "Total records that failed parsing or assessment.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neo_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "neo_etl",
			Name:      "batch_size",
			Help:      "Number of catalog rows per extracted batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "neo_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-assess-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "api_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "neo_etl",
			Name:      "api_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		SBDBCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "sbdb_cache_total",
			Help:      "SBDB lookup cache results.",
		}, []string{"result"}),
		SBDBEnrichment: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neo_etl",
			Name:      "sbdb_enrichment_enabled",
			Help:      "1 when SBDB MOID enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsFetched,
		m.RecordsAssessed,
		m.AssessErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.APIRequests,
		m.APIDuration,
		m.SBDBCache,
		m.SBDBEnrichment,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsFetched:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "neo_etl", Name: "records_fetched_total"}),
		RecordsAssessed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "neo_etl", Name: "records_assessed_total"}),
		AssessErrors:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "neo_etl", Name: "assess_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "neo_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "neo_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "neo_etl", Name: "batch_processing_duration_seconds"}),
		APIRequests:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "neo_etl", Name: "api_requests_total"}, []string{"source", "outcome"}),
		APIDuration:             prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "neo_etl", Name: "api_request_duration_seconds"}, []string{"source"}),
		SBDBCache:               prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "neo_etl", Name: "sbdb_cache_total"}, []string{"result"}),
		SBDBEnrichment:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "neo_etl", Name: "sbdb_enrichment_enabled"}),
	}
}
