package classifier

import (
	"fmt"
	"sort"

	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
	tflite "github.com/tphakala/go-tflite"
)

// Prediction is one ranked model output: the opaque class id, the model's
// native label and the raw probability in [0,1].
type Prediction struct {
	ClassID     string
	Label       string
	Probability float32
}

// Predict runs the model's forward pass once on the prepared tensor and
// returns the top K classes by probability in descending order. Ties keep
// the model's native output order.
func (c *Classifier) Predict(tensor *Tensor) ([]Prediction, error) {
	// Interpreter access is serialized, one forward pass at a time
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interpreter == nil {
		return nil, errors.Newf("classification model is not loaded").
			Component("classifier").
			Category(errors.CategoryModelNotLoaded).
			Build()
	}

	inputTensor := c.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, errors.Newf("cannot get input tensor").
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	input := inputTensor.Float32s()
	if len(input) != len(tensor.Data) {
		return nil, errors.Newf("input tensor size mismatch: model expects %d values, got %d", len(input), len(tensor.Data)).
			Component("classifier").
			Category(errors.CategoryInference).
			Context("model_input_size", len(input)).
			Context("tensor_size", len(tensor.Data)).
			Build()
	}
	copy(input, tensor.Data)

	if status := c.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.New(fmt.Errorf("tensor invoke failed: %v", status)).
			Component("classifier").
			Category(errors.CategoryInference).
			Context("status_code", int(status)).
			Build()
	}

	outputTensor := c.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return nil, errors.Newf("cannot get output tensor").
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	probabilities := outputTensor.Float32s()
	results, err := pairClassesAndProbabilities(c.Classes, probabilities)
	if err != nil {
		return nil, errors.New(err).
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	rankPredictions(results)

	topK := c.Settings.Classifier.TopK
	if topK <= 0 {
		topK = conf.DefaultTopK
	}
	return trimPredictionsToMax(results, topK), nil
}

// pairClassesAndProbabilities pairs the class index with the model output vector.
func pairClassesAndProbabilities(classes []Class, probabilities []float32) ([]Prediction, error) {
	if len(classes) != len(probabilities) {
		return nil, fmt.Errorf("mismatched class index and output lengths: %d vs %d", len(classes), len(probabilities))
	}

	results := make([]Prediction, len(classes))
	for i := range classes {
		results[i] = Prediction{
			ClassID:     classes[i].ID,
			Label:       classes[i].Name,
			Probability: probabilities[i],
		}
	}
	return results, nil
}

// rankPredictions sorts predictions by probability in descending order.
// The sort is stable so equal probabilities keep the model's output order.
func rankPredictions(results []Prediction) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})
}

// trimPredictionsToMax limits the ranked predictions to at most maxResults.
func trimPredictionsToMax(results []Prediction, maxResults int) []Prediction {
	if len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
