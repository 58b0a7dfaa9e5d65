package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for HTTP request handling.
type HTTPMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
	uploadSize      prometheus.Histogram

	collectors []prometheus.Collector
}

// NewHTTPMetrics creates and registers new HTTP metrics.
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) initMetrics() error {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes",
			Buckets: prometheus.ExponentialBuckets(BucketStart100B, BucketFactor10, BucketCount6),
		},
		[]string{"method", "path"},
	)

	m.uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_image_uploads_total",
			Help: "Total number of image upload requests",
		},
		[]string{"status"}, // status: accepted, rejected
	)

	m.uploadSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "http_image_upload_size_bytes",
			Help:    "Size of accepted image uploads in bytes",
			Buckets: prometheus.ExponentialBuckets(BucketStart100B, BucketFactor10, BucketCount6),
		},
	)

	m.collectors = []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.responseSize,
		m.uploadsTotal,
		m.uploadSize,
	}
	return nil
}

// Describe implements the Collector interface.
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface.
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordRequest records one served HTTP request.
func (m *HTTPMetrics) RecordRequest(method, path string, statusCode int, durationSeconds float64, responseBytes int64) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(durationSeconds)
	if responseBytes > 0 {
		m.responseSize.WithLabelValues(method, path).Observe(float64(responseBytes))
	}
}

// RecordUpload records an image upload attempt.
func (m *HTTPMetrics) RecordUpload(accepted bool, sizeBytes int64) {
	if accepted {
		m.uploadsTotal.WithLabelValues("accepted").Inc()
		m.uploadSize.Observe(float64(sizeBytes))
		return
	}
	m.uploadsTotal.WithLabelValues("rejected").Inc()
}
