// Package metrics exposes Prometheus metrics for the auditing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records all service metrics. A nil *Collector is
// valid and records nothing, so components can carry it unconditionally.
type Collector struct {
	registry *prometheus.Registry

	// Ingestion metrics
	documentsIndexed prometheus.Counter
	documentsSkipped *prometheus.CounterVec
	ingestDuration   prometheus.Histogram
	pendingDocuments prometheus.Gauge

	// Query pipeline metrics
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	searchesTotal      prometheus.Counter

	// Model API metrics
	modelRequestsTotal *prometheus.CounterVec
	rateLimitRetries   prometheus.Counter
}

// NewCollector creates a collector and registers its metrics with the
// given registry (a new registry when nil).
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	const namespace = "readily"
	const subsystem = "auditor"

	c := &Collector{
		registry: registry,

		documentsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "documents_indexed_total",
			Help:      "Total number of policy documents written to the store",
		}),

		documentsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "documents_skipped_total",
			Help:      "Documents dropped during ingestion by reason",
		}, []string{"reason"}),

		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of full ingestion runs in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		}),

		pendingDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "documents_pending",
			Help:      "PDFs that appeared after ingestion and await the next restart",
		}),

		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evaluations_total",
			Help:      "Compliance evaluations by verdict",
		}, []string{"met"}),

		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of single-question evaluations in seconds",
			// Reasoning calls dominate; buckets sized for LLM latencies
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		searchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "searches_total",
			Help:      "Full-text search queries executed",
		}),

		modelRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "model_requests_total",
			Help:      "Model API requests by purpose and status",
		}, []string{"purpose", "status"}),

		rateLimitRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "model_rate_limit_retries_total",
			Help:      "Backoff retries triggered by model API rate limiting",
		}),
	}

	registry.MustRegister(
		c.documentsIndexed,
		c.documentsSkipped,
		c.ingestDuration,
		c.pendingDocuments,
		c.evaluationsTotal,
		c.evaluationDuration,
		c.searchesTotal,
		c.modelRequestsTotal,
		c.rateLimitRetries,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordDocumentIndexed counts one document written to the store.
func (c *Collector) RecordDocumentIndexed() {
	if c == nil {
		return
	}
	c.documentsIndexed.Inc()
}

// RecordDocumentSkipped counts one document dropped during ingestion.
// Reason is one of "no_text", "read_error".
func (c *Collector) RecordDocumentSkipped(reason string) {
	if c == nil {
		return
	}
	c.documentsSkipped.WithLabelValues(reason).Inc()
}

// RecordIngestDuration records the duration of a full ingestion run.
func (c *Collector) RecordIngestDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.ingestDuration.Observe(d.Seconds())
}

// SetPendingDocuments sets the count of PDFs awaiting the next ingestion.
func (c *Collector) SetPendingDocuments(n int) {
	if c == nil {
		return
	}
	c.pendingDocuments.Set(float64(n))
}

// RecordEvaluation records one completed evaluation.
func (c *Collector) RecordEvaluation(met string, d time.Duration) {
	if c == nil {
		return
	}
	c.evaluationsTotal.WithLabelValues(met).Inc()
	c.evaluationDuration.Observe(d.Seconds())
}

// RecordSearch counts one full-text search.
func (c *Collector) RecordSearch() {
	if c == nil {
		return
	}
	c.searchesTotal.Inc()
}

// RecordModelRequest counts one model API request. Purpose is one of
// "metadata", "routing", "evaluation", "questionnaire"; status is
// "success", "rate_limited" or "error".
func (c *Collector) RecordModelRequest(purpose, status string) {
	if c == nil {
		return
	}
	c.modelRequestsTotal.WithLabelValues(purpose, status).Inc()
}

// RecordRateLimitRetry counts one backoff retry.
func (c *Collector) RecordRateLimitRetry() {
	if c == nil {
		return
	}
	c.rateLimitRetries.Inc()
}
