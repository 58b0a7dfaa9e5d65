package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.Classifier)
	require.NotNil(t, m.Datastore)
	require.NotNil(t, m.HTTP)
}

func TestMetricsEndpointExposesRecordedSamples(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	m.Classifier.RecordPrediction("golden retriever", 0.12)
	m.Classifier.RecordError("persistence")
	m.Datastore.RecordOperation("save", "success", 0.004)
	m.HTTP.RecordRequest("POST", "/api/v2/analyze", 200, 0.2, 512)
	m.HTTP.RecordUpload(true, 1024)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "classifier_predictions_total")
	assert.Contains(t, body, "classifier_pipeline_errors_total")
	assert.Contains(t, body, "datastore_operations_total")
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "http_image_uploads_total")
}

func TestConcurrentRecording(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				m.Classifier.RecordPrediction("tabby", 0.01)
				m.HTTP.RecordRequest("GET", "/api/v2/results", 200, 0.001, 128)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
