// Package metrics records validation outcomes as Prometheus metrics.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abdidvp/detectlint/internal/domain"
)

const namespace = "detectlint"

// Collector implements domain.ValidationObserver.
type Collector struct {
	gatherer prometheus.Gatherer

	validationsTotal   *prometheus.CounterVec
	issuesTotal        *prometheus.CounterVec
	confidence         *prometheus.HistogramVec
	validationDuration *prometheus.HistogramVec

	batchesTotal    prometheus.Counter
	batchDetections *prometheus.CounterVec
	batchDuration   prometheus.Histogram
}

// New creates a Collector registered on a fresh registry.
func New() (*Collector, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Collector and registers it on registry.
func NewWithRegistry(registry *prometheus.Registry) (*Collector, error) {
	c := &Collector{gatherer: registry}
	c.initMetrics()
	if err := registry.Register(c); err != nil {
		return nil, fmt.Errorf("registering validation metrics: %w", err)
	}
	return c, nil
}

func (c *Collector) initMetrics() {
	c.validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of detections validated",
		},
		[]string{"format", "status"},
	)

	c.issuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Total number of validation issues by code and severity",
		},
		[]string{"format", "code", "severity"},
	)

	c.confidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Confidence score of validated detections",
			Buckets:   []float64{0, 25, 50, 75, 85, 90, 95, 100},
		},
		[]string{"format"},
	)

	c.validationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time taken to validate a single detection",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
		[]string{"format"},
	)

	c.batchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Total number of batches run",
	})

	c.batchDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_detections_total",
			Help:      "Detections processed in batches by outcome",
		},
		[]string{"outcome"}, // valid, invalid
	)

	c.batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Time taken to run a batch",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.validationsTotal.Describe(ch)
	c.issuesTotal.Describe(ch)
	c.confidence.Describe(ch)
	c.validationDuration.Describe(ch)
	c.batchesTotal.Describe(ch)
	c.batchDetections.Describe(ch)
	c.batchDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.validationsTotal.Collect(ch)
	c.issuesTotal.Collect(ch)
	c.confidence.Collect(ch)
	c.validationDuration.Collect(ch)
	c.batchesTotal.Collect(ch)
	c.batchDetections.Collect(ch)
	c.batchDuration.Collect(ch)
}

// ObserveValidation records the terminal state of one validation.
func (c *Collector) ObserveValidation(r *domain.ValidationResult, elapsed time.Duration) {
	if r == nil {
		return
	}
	format := string(r.SourceFormat)
	c.validationsTotal.WithLabelValues(format, string(r.Status)).Inc()
	for _, issue := range r.Issues {
		c.issuesTotal.WithLabelValues(format, strconv.Itoa(int(issue.Code)), string(issue.Severity)).Inc()
	}
	c.confidence.WithLabelValues(format).Observe(r.ConfidenceScore)
	c.validationDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObserveBatch records a completed batch.
func (c *Collector) ObserveBatch(s domain.BatchSummary, elapsed time.Duration) {
	c.batchesTotal.Inc()
	c.batchDetections.WithLabelValues("valid").Add(float64(s.Valid))
	c.batchDetections.WithLabelValues("invalid").Add(float64(s.Invalid))
	c.batchDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric in the Prometheus text format to path,
// for pickup by the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
