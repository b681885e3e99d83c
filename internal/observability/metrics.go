package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// risk-aggregation pipeline.
type Metrics struct {
	// Forecast fan-out metrics.
	ForecastRequests *prometheus.CounterVec // labels: outcome={success,no_data,error}
	ForecastDuration prometheus.Histogram

	// Aggregation metrics.
	CacheLookups    *prometheus.CounterVec // labels: result={hit,miss,bypass}
	ComputeDuration prometheus.Histogram
	RowsReturned    prometheus.Histogram

	CatalogCounties     prometheus.Gauge
	PopulationsOverlaid prometheus.Gauge

	// Downstream publishing.
	RowsPublished prometheus.Counter
	PublishErrors prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "forecast_requests_total",
			Help:      "Per-county forecast fetches by outcome.",
		}, []string{"outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_risk",
			Name:      "forecast_duration_seconds",
			Help:      "Duration of a single upstream forecast fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_risk",
			Name:      "compute_duration_seconds",
			Help:      "Duration of a full select-fanout-score-sort pass.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RowsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_risk",
			Name:      "rows_returned",
			Help:      "Risk rows returned per request.",
			Buckets:   []float64{0, 1, 5, 10, 15, 25, 60, 120, 250},
		}),
		CatalogCounties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outage_risk",
			Name:      "catalog_counties",
			Help:      "Counties loaded in the reference catalog.",
		}),
		PopulationsOverlaid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outage_risk",
			Name:      "populations_overlaid",
			Help:      "Counties whose population was updated from the PEP API.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "rows_published_total",
			Help:      "Risk rows published to the downstream topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "publish_errors_total",
			Help:      "Failed downstream publish attempts.",
		}),
	}

	prometheus.MustRegister(
		m.ForecastRequests,
		m.ForecastDuration,
		m.CacheLookups,
		m.ComputeDuration,
		m.RowsReturned,
		m.CatalogCounties,
		m.PopulationsOverlaid,
		m.RowsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ForecastRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outage_risk", Name: "forecast_requests_total"}, []string{"outcome"}),
		ForecastDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "outage_risk", Name: "forecast_duration_seconds"}),
		CacheLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outage_risk", Name: "cache_lookups_total"}, []string{"result"}),
		ComputeDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "outage_risk", Name: "compute_duration_seconds"}),
		RowsReturned:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "outage_risk", Name: "rows_returned"}),
		CatalogCounties:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "outage_risk", Name: "catalog_counties"}),
		PopulationsOverlaid: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "outage_risk", Name: "populations_overlaid"}),
		RowsPublished:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "outage_risk", Name: "rows_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "outage_risk", Name: "publish_errors_total"}),
	}
}
