package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
)

func TestPairClassesAndProbabilities(t *testing.T) {
	t.Parallel()

	classes := []Class{
		{ID: "n01440764", Name: "tench"},
		{ID: "n01443537", Name: "goldfish"},
	}

	results, err := pairClassesAndProbabilities(classes, []float32{0.1, 0.9})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "n01443537", results[1].ClassID)
	assert.InDelta(t, 0.9, results[1].Probability, 1e-6)

	_, err = pairClassesAndProbabilities(classes, []float32{0.1})
	require.Error(t, err)
}

func TestRankPredictionsDescendingAndStable(t *testing.T) {
	t.Parallel()

	results := []Prediction{
		{ClassID: "a", Probability: 0.2},
		{ClassID: "b", Probability: 0.5},
		{ClassID: "c", Probability: 0.5},
		{ClassID: "d", Probability: 0.9},
	}

	rankPredictions(results)

	assert.Equal(t, "d", results[0].ClassID)
	// Ties keep the model's native output order: b before c
	assert.Equal(t, "b", results[1].ClassID)
	assert.Equal(t, "c", results[2].ClassID)
	assert.Equal(t, "a", results[3].ClassID)
}

func TestTrimPredictionsToMax(t *testing.T) {
	t.Parallel()

	results := make([]Prediction, 10)
	assert.Len(t, trimPredictionsToMax(results, conf.DefaultTopK), conf.DefaultTopK)
	assert.Len(t, trimPredictionsToMax(results[:3], conf.DefaultTopK), 3)
}

func TestPredictWithoutLoadedModel(t *testing.T) {
	t.Parallel()

	c := &Classifier{Settings: &conf.Settings{}}
	_, err := c.Predict(&Tensor{Data: make([]float32, 10)})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelNotLoaded))
}
