package datastore

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
)

// newTestStore opens a SQLite store backed by a temp file.
func newTestStore(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := New(settings)
	require.NotNil(t, store)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testResult(label string, score float64) *AnalysisResult {
	return &AnalysisResult{
		ImagePath:        "2026/08/29/blob.jpg",
		OriginalFilename: "photo.jpg",
		PredictionLabel:  label,
		PredictionScore:  score,
		ModelVersion:     "EfficientNetB0-v1.0",
		ProcessingTime:   0.42,
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	saved := testResult("ゴールデンレトリバー", 95.50)
	require.NoError(t, store.Save(saved))
	require.NotZero(t, saved.ID)

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "ゴールデンレトリバー", got.PredictionLabel)
	assert.InDelta(t, 95.50, got.PredictionScore, 0.005)
	assert.Equal(t, "EfficientNetB0-v1.0", got.ModelVersion)
	assert.Equal(t, "photo.jpg", got.OriginalFilename)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSaveEnforcesInvariants(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.Save(testResult("", 50))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = store.Save(testResult("dog", 100.01))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = store.Save(testResult("dog", -0.01))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	// Boundary values are valid
	assert.NoError(t, store.Save(testResult("dog", 0)))
	assert.NoError(t, store.Save(testResult("dog", 100)))
}

func TestGetMissingResult(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.Get(12345)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteResult(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	saved := testResult("猫", 80)
	require.NoError(t, store.Save(saved))

	require.NoError(t, store.Delete(saved.ID))

	_, err := store.Get(saved.ID)
	assert.True(t, errors.IsNotFound(err))

	// Deleting again reports not found
	err = store.Delete(saved.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteNonexistentID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	err := store.Delete(99999)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

// seedResults inserts count rows with strictly increasing creation times.
func seedResults(t *testing.T, store Interface, count int) {
	t.Helper()
	base := time.Now().Add(-time.Duration(count) * time.Minute)
	for i := 0; i < count; i++ {
		r := testResult(fmt.Sprintf("label-%02d", i), 50)
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(r))
	}
}

func TestListPaginationAndOrdering(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedResults(t, store, 25)

	page, err := store.List(1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.Results, 10)

	// Descending creation order: the newest row first
	assert.Equal(t, "label-24", page.Results[0].PredictionLabel)
	assert.Equal(t, "label-15", page.Results[9].PredictionLabel)

	last, err := store.List(3, 10, "")
	require.NoError(t, err)
	assert.Len(t, last.Results, 5)
	assert.Equal(t, "label-00", last.Results[4].PredictionLabel)
}

func TestListClampsOutOfRangePages(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	seedResults(t, store, 25)

	// Below the valid range serves the first page
	for _, page := range []int{0, -1} {
		got, err := store.List(page, 10, "")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Page)
		assert.Len(t, got.Results, 10)
	}

	// Beyond the last page serves the last page
	got, err := store.List(99, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Page)
	assert.Len(t, got.Results, 5)
}

func TestListEmptyStore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	page, err := store.List(5, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Results)
}

func TestListSearchFilter(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Save(testResult("Golden Retriever", 90)))
	require.NoError(t, store.Save(testResult("golden hamster", 70)))
	require.NoError(t, store.Save(testResult("tabby cat", 60)))

	page, err := store.List(1, 10, "GOLDEN")
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Results, 2)
	for _, r := range page.Results {
		assert.Contains(t, []string{"Golden Retriever", "golden hamster"}, r.PredictionLabel)
	}

	empty, err := store.List(1, 10, "zebra")
	require.NoError(t, err)
	assert.Empty(t, empty.Results)
}

func TestStatistics(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Save(testResult("dog", 90)))
	require.NoError(t, store.Save(testResult("dog", 80)))
	require.NoError(t, store.Save(testResult("cat", 70)))

	old := testResult("fox", 60)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Save(old))

	stats, err := store.Statistics()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalAnalyses)
	assert.InDelta(t, 75.0, stats.AverageConfidence, 0.005)
	assert.Equal(t, int64(3), stats.RecentCount)

	require.NotEmpty(t, stats.TopLabels)
	assert.Equal(t, "dog", stats.TopLabels[0].PredictionLabel)
	assert.Equal(t, int64(2), stats.TopLabels[0].Count)
}

func TestStatisticsEmptyStore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	stats, err := store.Statistics()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalAnalyses)
	assert.Equal(t, 0.0, stats.AverageConfidence)
	assert.Empty(t, stats.TopLabels)
}

func TestConfidenceLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{95, ConfidenceVeryHigh},
		{90, ConfidenceVeryHigh},
		{89.99, ConfidenceHigh},
		{70, ConfidenceHigh},
		{69.99, ConfidenceMedium},
		{50, ConfidenceMedium},
		{49.99, ConfidenceLow},
		{0, ConfidenceLow},
	}

	for _, tt := range tests {
		r := AnalysisResult{PredictionScore: tt.score}
		assert.Equal(t, tt.want, r.ConfidenceLevel(), "score %.2f", tt.score)
	}
}

func TestModelHelpers(t *testing.T) {
	t.Parallel()

	r := AnalysisResult{
		ImagePath:       "2026/08/29/abc.jpg",
		PredictionScore: 95.5,
		CreatedAt:       time.Now().Add(-time.Hour),
	}
	assert.Equal(t, "abc.jpg", r.ImageFilename())
	assert.Equal(t, "95.50%", r.FormattedScore())
	assert.True(t, r.IsRecent(24))

	r.CreatedAt = time.Now().Add(-25 * time.Hour)
	assert.False(t, r.IsRecent(24))

	r.ImagePath = ""
	assert.Equal(t, "", r.ImageFilename())
}
