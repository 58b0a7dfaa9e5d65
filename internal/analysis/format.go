package analysis

import (
	"fmt"
	"math"

	"github.com/tsuchida/bunrui-go/internal/classifier"
	"github.com/tsuchida/bunrui-go/internal/locale"
)

// FormattedPrediction is a single ranked prediction prepared for display.
type FormattedPrediction struct {
	ClassID        string  `json:"class_id"`
	Label          string  `json:"label"`
	Probability    string  `json:"probability"`
	RawProbability float64 `json:"raw_probability"`
}

// FormatPredictions converts raw classifier output into display form.
// Probabilities are rendered as percentages with two decimals, order
// is preserved.
func FormatPredictions(predictions []classifier.Prediction) []FormattedPrediction {
	formatted := make([]FormattedPrediction, 0, len(predictions))
	for _, p := range predictions {
		raw := float64(p.Probability) * 100
		formatted = append(formatted, FormattedPrediction{
			ClassID:        p.ClassID,
			Label:          p.Label,
			Probability:    fmt.Sprintf("%.2f%%", raw),
			RawProbability: raw,
		})
	}
	return formatted
}

// LocalizeTop rewrites the label of the first prediction using the locale
// table, falling back to the native label with underscores replaced.
func LocalizeTop(formatted []FormattedPrediction, table *locale.Table) {
	if len(formatted) == 0 {
		return
	}
	if table != nil {
		formatted[0].Label = table.DisplayLabel(formatted[0].ClassID, formatted[0].Label)
		return
	}
	formatted[0].Label = locale.FallbackLabel(formatted[0].Label)
}

// Score converts a raw probability into the persisted confidence score,
// a percentage rounded to two decimals.
func Score(probability float32) float64 {
	return math.Round(float64(probability)*100*100) / 100
}
