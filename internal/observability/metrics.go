package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "openfield"

// Metrics holds the Prometheus counters, histograms, and gauges for a comparison batch.
type Metrics struct {
	// Surface temperature simulations.
	Simulations        *prometheus.CounterVec // labels: outcome={success,error}
	SimulationDuration prometheus.Histogram
	SimulationCache    *prometheus.CounterVec // labels: result={hit,miss}
	OutputParseErrors  prometheus.Counter

	// Comfort service.
	ComfortRequests    *prometheus.CounterVec   // labels: model={solarcal,utci}, outcome={success,error}
	ComfortAPIDuration *prometheus.HistogramVec // labels: model={solarcal,utci}

	// Batch processing.
	ScenariosComputed prometheus.Counter
	ResultsPublished  *prometheus.CounterVec // labels: sink
	BatchRunning      prometheus.Gauge
	BatchDuration     prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Simulations,
		m.SimulationDuration,
		m.SimulationCache,
		m.OutputParseErrors,
		m.ComfortRequests,
		m.ComfortAPIDuration,
		m.ScenariosComputed,
		m.ResultsPublished,
		m.BatchRunning,
		m.BatchDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Ground surface temperature simulations by outcome.",
		}, []string{"outcome"}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Wall time of one EnergyPlus run including model write and output parse.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		SimulationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_cache_total",
			Help:      "Surface temperature cache lookups by result.",
		}, []string{"result"}),
		OutputParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_parse_errors_total",
			Help:      "Simulation output files that failed format or value parsing.",
		}),
		ComfortRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comfort_requests_total",
			Help:      "Comfort service requests by model and outcome.",
		}, []string{"model", "outcome"}),
		ComfortAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comfort_api_duration_seconds",
			Help:      "Comfort service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"model"}),
		ScenariosComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_computed_total",
			Help:      "Mitigation scenarios with a computed UTCI series.",
		}),
		ResultsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_published_total",
			Help:      "Scenario results handed to each sink.",
		}, []string{"sink"}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_running",
			Help:      "1 while a comparison batch is running, 0 otherwise.",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete comparison batch.",
			Buckets:   []float64{10, 60, 300, 600, 1800, 3600, 7200},
		}),
	}
}
