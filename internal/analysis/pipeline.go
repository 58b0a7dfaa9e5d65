// Package analysis orchestrates the image classification pipeline, from
// upload validation through inference to persistence.
package analysis

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/tsuchida/bunrui-go/internal/classifier"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/datastore"
	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/imagestore"
	"github.com/tsuchida/bunrui-go/internal/locale"
	"github.com/tsuchida/bunrui-go/internal/logging"
	"github.com/tsuchida/bunrui-go/internal/observability/metrics"
)

// Analyzer runs the full classification pipeline for a single image.
type Analyzer struct {
	Settings   *conf.Settings
	Classifier *classifier.Classifier
	Store      datastore.Interface
	Images     *imagestore.Store
	Labels     *locale.Table

	metrics *metrics.ClassifierMetrics
	logger  *slog.Logger
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Predictions are the ranked predictions, best first. The first
	// entry carries the localized display label.
	Predictions []FormattedPrediction

	// Score is the top-1 confidence as a percentage, two decimals.
	Score float64

	ModelVersion   string
	ProcessingTime float64 // seconds

	// Saved reports whether the result row was persisted. When false
	// and persistence was requested, SaveWarning explains why.
	Saved       bool
	SaveWarning string
	ResultID    uint
	ImagePath   string
}

// NewAnalyzer wires the pipeline components together.
func NewAnalyzer(settings *conf.Settings, clf *classifier.Classifier, store datastore.Interface, images *imagestore.Store, labels *locale.Table) *Analyzer {
	return &Analyzer{
		Settings:   settings,
		Classifier: clf,
		Store:      store,
		Images:     images,
		Labels:     labels,
		logger:     logging.ForService("analysis"),
	}
}

// SetMetrics attaches metric collectors. Safe to leave unset.
func (a *Analyzer) SetMetrics(m *metrics.ClassifierMetrics) {
	a.metrics = m
}

// Analyze validates, classifies and optionally persists one uploaded
// image. A persistence failure does not fail the analysis, the result
// is returned with Saved set to false and a warning attached.
func (a *Analyzer) Analyze(data []byte, originalFilename string, persist bool) (*Result, error) {
	start := time.Now()

	if err := classifier.ValidateUpload(&a.Settings.Upload, originalFilename, int64(len(data))); err != nil {
		return nil, err
	}

	tensor, err := classifier.Preprocess(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	predictions, err := a.Classifier.Predict(tensor)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordError("inference")
		}
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, errors.Newf("model produced no predictions").
			Component("analysis").
			Category(errors.CategoryInference).
			Context("filename", originalFilename).
			Build()
	}

	formatted := FormatPredictions(predictions)
	LocalizeTop(formatted, a.Labels)

	result := &Result{
		Predictions:    formatted,
		Score:          Score(predictions[0].Probability),
		ModelVersion:   a.Settings.Classifier.VersionString(),
		ProcessingTime: time.Since(start).Seconds(),
	}

	if a.metrics != nil {
		a.metrics.RecordPrediction(formatted[0].Label, result.ProcessingTime)
	}

	if persist {
		a.persist(data, originalFilename, result)
	}

	a.logger.Info("image analyzed",
		"filename", originalFilename,
		"label", formatted[0].Label,
		"score", result.Score,
		"duration_ms", time.Since(start).Milliseconds(),
		"saved", result.Saved)

	return result, nil
}

// persist stores the image blob and the result row. Failures are
// downgraded to a warning on the result.
func (a *Analyzer) persist(data []byte, originalFilename string, result *Result) {
	relPath, err := a.Images.Save(bytes.NewReader(data), originalFilename)
	if err != nil {
		a.warnSaveFailure(result, originalFilename, "failed to store uploaded image", err)
		return
	}

	row := &datastore.AnalysisResult{
		ImagePath:        relPath,
		OriginalFilename: originalFilename,
		PredictionLabel:  result.Predictions[0].Label,
		PredictionScore:  result.Score,
		ModelVersion:     result.ModelVersion,
		ProcessingTime:   result.ProcessingTime,
	}
	if err := a.Store.Save(row); err != nil {
		// Remove the orphaned blob, best effort.
		if rmErr := a.Images.Remove(relPath); rmErr != nil {
			a.logger.Warn("failed to remove orphaned image blob", "path", relPath, "error", rmErr)
		}
		a.warnSaveFailure(result, originalFilename, "failed to save analysis result", err)
		return
	}

	result.Saved = true
	result.ResultID = row.ID
	result.ImagePath = relPath
}

func (a *Analyzer) warnSaveFailure(result *Result, filename, msg string, err error) {
	a.logger.Warn(msg, "filename", filename, "error", err)
	if a.metrics != nil {
		a.metrics.RecordError("persistence")
	}
	result.Saved = false
	result.SaveWarning = "analysis completed but the result could not be saved"
}
