// Package telemetry provides a Prometheus implementation of
// holograph.MetricsCollector.
//
//	reg := prometheus.NewRegistry()
//	collector := telemetry.NewPrometheusCollector(reg)
//	kb, err := holograph.New(holograph.WithMetricsCollector(collector))
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/holograph"
)

const namespace = "holograph"

var _ holograph.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector records store operations as Prometheus metrics.
type PrometheusCollector struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	results    *prometheus.HistogramVec
	cells      prometheus.Histogram
	savedBytes prometheus.Counter
	loaded     prometheus.Gauge
}

// NewPrometheusCollector creates the collector and registers its metrics on
// reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total store operations by kind and status",
		}, []string{"op", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of store operations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of matches returned per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 50, 100, 500, 1000},
		}, []string{"op"}),
		cells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resonate_cells_scanned",
			Help:      "Grid cells scanned per resonance query",
			Buckets:   []float64{1, 5, 25, 50, 125},
		}),
		savedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_written_total",
			Help:      "Total snapshot bytes written",
		}),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_loaded_triples",
			Help:      "Triples restored by the most recent successful load",
		}),
	}

	reg.MustRegister(c.operations, c.latency, c.results, c.cells, c.savedBytes, c.loaded)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *PrometheusCollector) observe(op string, d time.Duration, err error) {
	c.operations.WithLabelValues(op, status(err)).Inc()
	c.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordInsert implements holograph.MetricsCollector.
func (c *PrometheusCollector) RecordInsert(d time.Duration, err error) {
	c.observe("insert", d, err)
}

// RecordQuery implements holograph.MetricsCollector.
func (c *PrometheusCollector) RecordQuery(kind string, results int, d time.Duration, err error) {
	op := "query_" + kind
	c.observe(op, d, err)
	if err == nil {
		c.results.WithLabelValues(op).Observe(float64(results))
	}
}

// RecordResonate implements holograph.MetricsCollector.
func (c *PrometheusCollector) RecordResonate(cells, results int, d time.Duration, err error) {
	c.observe("resonate", d, err)
	if err == nil {
		c.cells.Observe(float64(cells))
		c.results.WithLabelValues("resonate").Observe(float64(results))
	}
}

// RecordSave implements holograph.MetricsCollector.
func (c *PrometheusCollector) RecordSave(bytes int64, d time.Duration, err error) {
	c.observe("save", d, err)
	if err == nil {
		c.savedBytes.Add(float64(bytes))
	}
}

// RecordLoad implements holograph.MetricsCollector.
func (c *PrometheusCollector) RecordLoad(triples int, d time.Duration, err error) {
	c.observe("load", d, err)
	if err == nil {
		c.loaded.Set(float64(triples))
	}
}
