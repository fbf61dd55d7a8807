// Package observability provides Prometheus metrics for bulk evaluations.
package observability

import (
	"fmt"
	"time"

	"github.com/huangsam/scorecard/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "scorecard"

// Metrics holds the batch metrics for one scorecard. Each instance owns its
// registry so repeated batches in one process never collide.
type Metrics struct {
	registry *prometheus.Registry

	// Record metrics
	RecordsTotal   *prometheus.CounterVec
	DecisionsTotal *prometheus.CounterVec
	BucketsTotal   *prometheus.CounterVec
	MissingFields  *prometheus.CounterVec

	// Score metrics
	Scores       prometheus.Histogram
	ApprovalRate prometheus.Gauge
	AverageScore prometheus.Gauge

	// Batch metrics
	BatchesTotal       prometheus.Counter
	BatchDuration      prometheus.Histogram
	LastBatchTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
// Scores are bucketed in tenths of scoreScale.
func NewMetrics(namespace, scorecard string, scoreScale float64) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if scoreScale <= 0 {
		scoreScale = schema.DefaultScoreScale
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"scorecard": scorecard}

	return &Metrics{
		registry: reg,

		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "records_total",
			Help:        "Total number of records by outcome (evaluated, error, not_evaluated)",
			ConstLabels: labels,
		}, []string{"outcome"}),
		DecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "decisions_total",
			Help:        "Total number of evaluated records by decision",
			ConstLabels: labels,
		}, []string{"decision", "forced"}),
		BucketsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "bucket_records_total",
			Help:        "Total number of evaluated records by grade",
			ConstLabels: labels,
		}, []string{"grade"}),
		MissingFields: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "missing_fields_total",
			Help:        "Total number of records missing a scored field",
			ConstLabels: labels,
		}, []string{"field"}),

		Scores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "final_score",
			Help:        "Distribution of final scores",
			ConstLabels: labels,
			Buckets:     prometheus.LinearBuckets(scoreScale/10, scoreScale/10, 10),
		}),
		ApprovalRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "approval_rate_percent",
			Help:        "Approval rate of the last batch",
			ConstLabels: labels,
		}),
		AverageScore: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "average_score",
			Help:        "Average final score of the last batch",
			ConstLabels: labels,
		}),

		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "batches_total",
			Help:        "Total number of batches evaluated",
			ConstLabels: labels,
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "batch_duration_seconds",
			Help:        "Wall-clock duration of batch evaluations",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		LastBatchTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "bulk",
			Name:        "last_batch_timestamp_seconds",
			Help:        "Unix timestamp of the last completed batch",
			ConstLabels: labels,
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBatch records one bulk evaluation.
func (m *Metrics) ObserveBatch(output *schema.BatchOutput, duration time.Duration) {
	if output == nil || output.Summary == nil {
		return
	}
	s := output.Summary

	m.BatchesTotal.Inc()
	m.BatchDuration.Observe(duration.Seconds())
	m.LastBatchTimestamp.SetToCurrentTime()

	m.RecordsTotal.WithLabelValues("evaluated").Add(float64(s.Evaluated))
	m.RecordsTotal.WithLabelValues("error").Add(float64(s.RecordErrors))
	m.RecordsTotal.WithLabelValues("not_evaluated").Add(float64(s.NotEvaluated))

	for grade, n := range s.BucketCounts {
		m.BucketsTotal.WithLabelValues(grade).Add(float64(n))
	}
	for field, n := range s.MissingFieldCounts {
		m.MissingFields.WithLabelValues(field).Add(float64(n))
	}

	for _, r := range output.Results {
		if r == nil {
			continue
		}
		m.Scores.Observe(r.FinalScore)
		decision, forced := r.Decision, "false"
		if r.HardDecision != schema.NoDecision {
			decision, forced = r.HardDecision, "true"
		}
		m.DecisionsTotal.WithLabelValues(string(decision), forced).Inc()
	}

	m.ApprovalRate.Set(s.ApprovalRate)
	m.AverageScore.Set(s.AverageScore)
}

// WriteTextfile writes all metrics in the text exposition format for the
// node exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
