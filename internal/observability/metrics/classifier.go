package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ClassifierMetrics contains Prometheus metrics for model inference.
type ClassifierMetrics struct {
	registry *prometheus.Registry

	predictionsTotal   *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	pipelineErrors     *prometheus.CounterVec
	modelLoadDuration  prometheus.Histogram

	collectors []prometheus.Collector
}

// NewClassifierMetrics creates and registers new classifier metrics.
func NewClassifierMetrics(registry *prometheus.Registry) (*ClassifierMetrics, error) {
	m := &ClassifierMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ClassifierMetrics) initMetrics() error {
	m.predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_predictions_total",
			Help: "Total number of completed predictions by top-1 label",
		},
		[]string{"label"},
	)

	m.predictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classifier_prediction_duration_seconds",
			Help:    "Time taken for the full classification pipeline",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
	)

	m.pipelineErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_pipeline_errors_total",
			Help: "Total number of pipeline errors by stage",
		},
		[]string{"stage"}, // stage: inference, persistence
	)

	m.modelLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classifier_model_load_duration_seconds",
			Help:    "Time taken to load the model at startup",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
	)

	m.collectors = []prometheus.Collector{
		m.predictionsTotal,
		m.predictionDuration,
		m.pipelineErrors,
		m.modelLoadDuration,
	}
	return nil
}

// Describe implements the Collector interface.
func (m *ClassifierMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface.
func (m *ClassifierMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordPrediction records one completed prediction and its duration.
func (m *ClassifierMetrics) RecordPrediction(label string, durationSeconds float64) {
	m.predictionsTotal.WithLabelValues(label).Inc()
	m.predictionDuration.Observe(durationSeconds)
}

// RecordError records a pipeline error for the given stage.
func (m *ClassifierMetrics) RecordError(stage string) {
	m.pipelineErrors.WithLabelValues(stage).Inc()
}

// RecordModelLoad records the startup model load duration.
func (m *ClassifierMetrics) RecordModelLoad(durationSeconds float64) {
	m.modelLoadDuration.Observe(durationSeconds)
}
