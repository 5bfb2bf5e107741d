package metrics

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	chartsRendered   *prometheus.CounterVec
	renderFailures   *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	exportsTotal     *prometheus.CounterVec
	batchJobsActive  prometheus.Gauge
	batchJobsTotal   *prometheus.CounterVec
	paritySimilarity *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		chartsRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapestry_charts_rendered_total",
				Help: "Total number of charts rendered",
			},
			[]string{"chart", "engine", "mode"},
		),

		renderFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapestry_render_failures_total",
				Help: "Total number of chart render failures",
			},
			[]string{"chart", "engine"},
		),

		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tapestry_render_duration_seconds",
				Help:    "Chart render duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"chart", "engine"},
		),

		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapestry_exports_total",
				Help: "Total number of artifact exports",
			},
			[]string{"format", "status"},
		),

		batchJobsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tapestry_batch_jobs_active",
				Help: "Number of batch render jobs currently running",
			},
		),

		batchJobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapestry_batch_jobs_total",
				Help: "Total number of batch render jobs",
			},
			[]string{"status"},
		),

		paritySimilarity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tapestry_parity_similarity_score",
				Help: "Latest cross-engine similarity score per chart type (0-100)",
			},
			[]string{"chart"},
		),
	}

	reg.MustRegister(r.chartsRendered)
	reg.MustRegister(r.renderFailures)
	reg.MustRegister(r.renderDuration)
	reg.MustRegister(r.exportsTotal)
	reg.MustRegister(r.batchJobsActive)
	reg.MustRegister(r.batchJobsTotal)
	reg.MustRegister(r.paritySimilarity)

	return r
}

// RecordRender records one chart render completion.
func (r *Registry) RecordRender(chart, engine, mode string, duration float64) {
	r.chartsRendered.WithLabelValues(chart, engine, mode).Inc()
	r.renderDuration.WithLabelValues(chart, engine).Observe(duration)
}

// RecordRenderFailure records one chart render failure.
func (r *Registry) RecordRenderFailure(chart, engine string) {
	r.renderFailures.WithLabelValues(chart, engine).Inc()
}

// RecordExport records an artifact export attempt.
func (r *Registry) RecordExport(format, status string) {
	r.exportsTotal.WithLabelValues(format, status).Inc()
}

// BatchJobStarted increments the active batch job gauge.
func (r *Registry) BatchJobStarted() {
	r.batchJobsActive.Inc()
}

// BatchJobFinished decrements the active gauge and records the outcome.
func (r *Registry) BatchJobFinished(status string) {
	r.batchJobsActive.Dec()
	r.batchJobsTotal.WithLabelValues(status).Inc()
}

// SetParitySimilarity records the latest cross-engine similarity score.
func (r *Registry) SetParitySimilarity(chart string, score float64) {
	r.paritySimilarity.WithLabelValues(chart).Set(score)
}

// Export gathers the registry and renders it in the Prometheus text
// exposition format, so a batch run can persist its metrics as an artifact.
func (r *Registry) Export() ([]byte, error) {
	families, err := r.Gather()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
