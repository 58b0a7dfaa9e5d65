package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/datastore"
	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/imagestore"
)

// newTestController builds a controller backed by a temp SQLite store
// and a temp image directory. The classifier pipeline is left nil, the
// handlers under test never reach it.
func newTestController(t *testing.T) (*Controller, datastore.Interface) {
	t.Helper()

	dir := t.TempDir()

	settings := &conf.Settings{}
	settings.Version = "test"
	settings.Classifier.ModelName = "EfficientNetB0"
	settings.Classifier.ModelVersion = "v1.0"
	settings.Upload.Path = filepath.Join(dir, "media")
	settings.Upload.MaxSize = conf.DefaultMaxUploadSize
	settings.Upload.AllowedExtensions = conf.DefaultImageExtensions
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(dir, "test.db")

	ds := datastore.New(settings)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	images, err := imagestore.New(&settings.Upload)
	require.NoError(t, err)

	// Keep the API log file inside the temp dir
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	e := echo.New()
	controller, err := New(e, ds, settings, nil, images, nil, nil)
	require.NoError(t, err)
	t.Cleanup(controller.Shutdown)

	return controller, ds
}

func seedResult(t *testing.T, ds datastore.Interface, label string, score float64) *datastore.AnalysisResult {
	t.Helper()
	r := &datastore.AnalysisResult{
		ImagePath:        "2026/08/29/blob.jpg",
		OriginalFilename: "photo.jpg",
		PredictionLabel:  label,
		PredictionScore:  score,
		ModelVersion:     "EfficientNetB0-v1.0",
		ProcessingTime:   0.1,
	}
	require.NoError(t, ds.Save(r))
	return r
}

func doRequest(c *Controller, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/health", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "EfficientNetB0-v1.0", resp.ModelVersion)
}

func TestListResultsPagination(t *testing.T) {
	controller, ds := newTestController(t)
	for i := 0; i < 15; i++ {
		seedResult(t, ds, fmt.Sprintf("label-%02d", i), 50)
	}

	rec := doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/results", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var page ResultsPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 10)

	// Non-numeric page falls back to the first page
	rec = doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/results?page=abc", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)

	// Out-of-range page is clamped to the last page
	rec = doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/results?page=99", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Results, 5)
}

func TestListResultsSearch(t *testing.T) {
	controller, ds := newTestController(t)
	seedResult(t, ds, "ゴールデンレトリバー", 95)
	seedResult(t, ds, "タビーキャット", 80)

	rec := doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/results?search=%E3%83%AC%E3%83%88%E3%83%AA%E3%83%90%E3%83%BC", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var page ResultsPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "ゴールデンレトリバー", page.Results[0].Label)
}

func TestGetResult(t *testing.T) {
	controller, ds := newTestController(t)
	saved := seedResult(t, ds, "tabby cat", 88.5)

	rec := doRequest(controller, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v2/results/%d", saved.ID), http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var view ResultView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, saved.ID, view.ID)
	assert.Equal(t, "tabby cat", view.Label)
	assert.Equal(t, "88.50%", view.FormattedScore)
	assert.Equal(t, datastore.ConfidenceHigh, view.ConfidenceLevel)
	assert.Equal(t, "/media/uploads/2026/08/29/blob.jpg", view.ImageURL)
}

func TestGetResultErrors(t *testing.T) {
	controller, _ := newTestController(t)

	rec := doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/results/99999", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/results/abc", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CorrelationID)
}

func TestDeleteResult(t *testing.T) {
	controller, ds := newTestController(t)

	// Blob on disk referenced by the row
	blob, err := controller.Images.Save(bytes.NewReader([]byte("jpeg bytes")), "photo.jpg")
	require.NoError(t, err)
	saved := &datastore.AnalysisResult{
		ImagePath:        blob,
		OriginalFilename: "photo.jpg",
		PredictionLabel:  "tabby cat",
		PredictionScore:  88.5,
		ModelVersion:     "EfficientNetB0-v1.0",
	}
	require.NoError(t, ds.Save(saved))

	rec := doRequest(controller, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v2/results/%d", saved.ID), http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deleted")

	_, err = ds.Get(saved.ID)
	require.Error(t, err)
	assert.False(t, controller.Images.Exists(blob))

	// Deleting again reports not found
	rec = doRequest(controller, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v2/results/%d", saved.ID), http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteResultMissingBlob(t *testing.T) {
	controller, ds := newTestController(t)
	saved := seedResult(t, ds, "tabby cat", 88.5)

	// Row references a blob that never existed, delete still succeeds
	rec := doRequest(controller, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v2/results/%d", saved.ID), http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	controller, ds := newTestController(t)
	seedResult(t, ds, "dog", 90)
	seedResult(t, ds, "dog", 80)
	seedResult(t, ds, "cat", 70)

	rec := doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/statistics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats datastore.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TotalAnalyses)
	assert.InDelta(t, 80.0, stats.AverageConfidence, 0.005)

	// Cached response ignores rows added inside the TTL window
	seedResult(t, ds, "fox", 60)
	rec = doRequest(controller, httptest.NewRequest(http.MethodGet, "/api/v2/statistics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TotalAnalyses)
}

func TestAnalyzeImageRejectsMissingFile(t *testing.T) {
	controller, _ := newTestController(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/analyze", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := doRequest(controller, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeImageRejectsBadExtension(t *testing.T) {
	controller, _ := newTestController(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/analyze", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := doRequest(controller, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestErrorResponseHidesInternalDetail(t *testing.T) {
	controller, _ := newTestController(t)

	newContext := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/api/v2/results", http.NoBody)
		rec := httptest.NewRecorder()
		return controller.Echo.NewContext(req, rec), rec
	}

	// Driver messages and on-disk paths stay out of the response body
	dbErr := errors.New(fmt.Errorf("no such table: analysis_results in /var/lib/app/data.db")).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()

	ctx, rec := newContext()
	require.NoError(t, controller.HandleError(ctx, dbErr, "Failed to list analysis results", http.StatusInternalServerError))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to list analysis results", resp.Error)
	assert.NotContains(t, rec.Body.String(), "data.db")
	assert.NotEmpty(t, resp.CorrelationID)

	ioErr := errors.New(fmt.Errorf("open /srv/uploads/2026/08/29/blob.jpg: permission denied")).
		Component("imagestore").
		Category(errors.CategoryFileIO).
		Build()

	ctx, rec = newContext()
	require.NoError(t, controller.HandleError(ctx, ioErr, "Failed to store image", http.StatusInternalServerError))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to store image", resp.Error)
	assert.NotContains(t, rec.Body.String(), "/srv/uploads")

	// Validation errors describe client input and pass through unchanged
	valErr := errors.Newf("file extension .txt is not allowed").
		Component("imagestore").
		Category(errors.CategoryValidation).
		Build()

	ctx, rec = newContext()
	require.NoError(t, controller.HandleError(ctx, valErr, "Invalid upload", http.StatusBadRequest))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, ".txt")
}
