package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stormdb"

// Metrics holds the Prometheus counters, histograms, and gauges for ingestion
// and search.
type Metrics struct {
	RowsRead         *prometheus.CounterVec // labels: hazard
	RowErrors        *prometheus.CounterVec // labels: hazard
	RecordsBuilt     *prometheus.CounterVec // labels: hazard
	IncompleteTracks prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Publishing metrics.
	SummariesPublished *prometheus.CounterVec // labels: sink
	PublishErrors      *prometheus.CounterVec // labels: sink
	BatchSize          prometheus.Histogram
	IngestDuration     *prometheus.HistogramVec // labels: hazard

	// Query metrics.
	SearchRequests *prometheus.CounterVec // labels: hazard, code
	CountyLookups  *prometheus.CounterVec // labels: method={code,name}, result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.RowsRead,
		m.RowErrors,
		m.RecordsBuilt,
		m.IncompleteTracks,
		m.PipelineRunning,
		m.SummariesPublished,
		m.PublishErrors,
		m.BatchSize,
		m.IngestDuration,
		m.SearchRequests,
		m.CountyLookups,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      help("Source rows read, by hazard."),
		}, []string{"hazard"}),
		RowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_errors_total",
			Help:      help("Source files rejected because of a malformed row."),
		}, []string{"hazard"}),
		RecordsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_built_total",
			Help:      help("Tracks or reports built, by hazard."),
		}, []string{"hazard"}),
		IncompleteTracks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incomplete_tracks_total",
			Help:      help("Tornado events dropped because segments were missing for some states."),
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 while an ingest is in progress."),
		}),
		SummariesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_published_total",
			Help:      help("Event summaries written to a sink."),
		}, []string{"sink"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Failed batch writes to a sink."),
		}, []string{"sink"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of summaries per published batch."),
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
		}),
		IngestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      help("Duration of a full ingest of one hazard file."),
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"hazard"}),
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      help("Search API requests by hazard and status code."),
		}, []string{"hazard", "code"}),
		CountyLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "county_lookups_total",
			Help:      help("County table lookups by method and cache result."),
		}, []string{"method", "result"}),
	}
}
