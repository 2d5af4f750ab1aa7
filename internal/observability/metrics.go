package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the snapshot pipeline.
type Metrics struct {
	// Fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram

	// Extraction metrics.
	ExtractErrors      *prometheus.CounterVec // labels: kind={structural_mismatch,malformed_number,duplicate_region_key,other}
	SnapshotsExtracted prometheus.Counter
	SnapshotRegions    prometheus.Gauge

	// Load metrics.
	RowsPublished prometheus.Counter
	LoadErrors    prometheus.Counter

	// Cycle metrics.
	Cycles               *prometheus.CounterVec // labels: outcome={success,fetch_error,extract_error,load_error}
	CycleDuration        prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge
	PipelineRunning      prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.ExtractErrors,
		m.SnapshotsExtracted,
		m.SnapshotRegions,
		m.RowsPublished,
		m.LoadErrors,
		m.Cycles,
		m.CycleDuration,
		m.LastSuccessTimestamp,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// NewUnregisteredMetrics creates Metrics that nothing scrapes, for one-shot
// commands that reuse the instrumented adapters.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "fetch_requests_total",
			Help:      "Dashboard page fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Dashboard page fetch duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ExtractErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "extract_errors_total",
			Help:      "Snapshot extraction failures by error kind.",
		}, []string{"kind"}),
		SnapshotsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "snapshots_extracted_total",
			Help:      "Total snapshots successfully extracted.",
		}),
		SnapshotRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "snapshot_regions",
			Help:      "Number of region rows in the latest snapshot.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "rows_published_total",
			Help:      "Total snapshot rows written to the sink topic.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "load_errors_total",
			Help:      "Total failures writing a snapshot to the sink.",
		}),
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "cycles_total",
			Help:      "Fetch-extract-load cycles by outcome.",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-extract-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful extraction.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
	}
}
