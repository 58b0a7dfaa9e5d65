package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/classifier"
	"github.com/tsuchida/bunrui-go/internal/locale"
)

func TestFormatPredictions(t *testing.T) {
	t.Parallel()

	predictions := []classifier.Prediction{
		{ClassID: "207", Label: "golden_retriever", Probability: 0.9550234},
		{ClassID: "208", Label: "Labrador_retriever", Probability: 0.0210},
		{ClassID: "0", Label: "tench", Probability: 0.0001},
	}

	formatted := FormatPredictions(predictions)
	require.Len(t, formatted, 3)

	// Two decimal percentage rendering
	assert.Equal(t, "95.50%", formatted[0].Probability)
	assert.InDelta(t, 95.50234, formatted[0].RawProbability, 0.0001)

	assert.Equal(t, "2.10%", formatted[1].Probability)
	assert.Equal(t, "0.01%", formatted[2].Probability)

	// Order preserved
	assert.Equal(t, "207", formatted[0].ClassID)
	assert.Equal(t, "0", formatted[2].ClassID)
}

func TestFormatPredictionsEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, FormatPredictions(nil))
}

func TestLocalizeTopFallback(t *testing.T) {
	t.Parallel()

	formatted := []FormattedPrediction{
		{ClassID: "207", Label: "golden_retriever"},
		{ClassID: "208", Label: "Labrador_retriever"},
	}
	LocalizeTop(formatted, nil)

	// Without a locale table the native label loses its underscores
	assert.Equal(t, "golden retriever", formatted[0].Label)
	// Only the top entry is rewritten
	assert.Equal(t, "Labrador_retriever", formatted[1].Label)
}

func TestLocalizeTopWithTable(t *testing.T) {
	t.Parallel()

	table := writeTestTable(t, `[{"num": "207", "ja": "ゴールデンレトリバー"}]`)

	formatted := []FormattedPrediction{{ClassID: "207", Label: "golden_retriever"}}
	LocalizeTop(formatted, table)
	assert.Equal(t, "ゴールデンレトリバー", formatted[0].Label)

	// Unknown class falls back to the cleaned native label
	formatted = []FormattedPrediction{{ClassID: "999", Label: "some_label"}}
	LocalizeTop(formatted, table)
	assert.Equal(t, "some label", formatted[0].Label)
}

func TestScore(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 95.50, Score(0.9550234), 0.0001)
	assert.InDelta(t, 0.01, Score(0.0001), 0.0001)
	assert.InDelta(t, 100.0, Score(1.0), 0.0001)
	assert.InDelta(t, 0.0, Score(0), 0.0001)
}

func writeTestTable(t *testing.T, content string) *locale.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	table, err := locale.Load(path)
	require.NoError(t, err)
	return table
}
