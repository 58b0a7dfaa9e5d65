// internal/api/v2/analyze.go
package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tsuchida/bunrui-go/internal/classifier"
)

// AnalyzeResponse is the JSON body returned for a successful analysis.
type AnalyzeResponse struct {
	Predictions    []PredictionView `json:"predictions"`
	Label          string           `json:"label"`
	Score          float64          `json:"score"`
	ModelVersion   string           `json:"model_version"`
	ProcessingTime float64          `json:"processing_time"`
	Saved          bool             `json:"saved"`
	Warning        string           `json:"warning,omitempty"`
	ResultID       uint             `json:"record_id,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
}

// PredictionView is a single ranked prediction in API responses.
type PredictionView struct {
	Label       string  `json:"label"`
	Probability string  `json:"probability"`
	Score       float64 `json:"score"`
}

// AnalyzeImage accepts a multipart upload under the "image" field,
// classifies it and persists the result.
func (c *Controller) AnalyzeImage(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		if c.metrics != nil {
			c.metrics.HTTP.RecordUpload(false, 0)
		}
		return c.HandleError(ctx, err, "no image file provided", http.StatusBadRequest)
	}

	// Cheap checks before reading the body into memory.
	if err := classifier.ValidateUpload(&c.Settings.Upload, fileHeader.Filename, fileHeader.Size); err != nil {
		if c.metrics != nil {
			c.metrics.HTTP.RecordUpload(false, fileHeader.Size)
		}
		return c.mapError(ctx, err, "invalid image upload")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, "failed to open uploaded file", http.StatusInternalServerError)
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(io.LimitReader(src, c.Settings.Upload.MaxSize+1))
	if err != nil {
		return c.HandleError(ctx, err, "failed to read uploaded file", http.StatusInternalServerError)
	}

	result, err := c.Analyzer.Analyze(data, fileHeader.Filename, true)
	if err != nil {
		if c.metrics != nil {
			c.metrics.HTTP.RecordUpload(false, fileHeader.Size)
		}
		return c.mapError(ctx, err, "image analysis failed")
	}

	if c.metrics != nil {
		c.metrics.HTTP.RecordUpload(true, fileHeader.Size)
	}
	c.logAPIRequest(ctx, slog.LevelInfo, "image analyzed",
		"filename", fileHeader.Filename,
		"label", result.Predictions[0].Label,
		"score", result.Score,
		"saved", result.Saved)

	resp := &AnalyzeResponse{
		Label:          result.Predictions[0].Label,
		Score:          result.Score,
		ModelVersion:   result.ModelVersion,
		ProcessingTime: result.ProcessingTime,
		Saved:          result.Saved,
		Warning:        result.SaveWarning,
		ResultID:       result.ResultID,
	}
	for _, p := range result.Predictions {
		resp.Predictions = append(resp.Predictions, PredictionView{
			Label:       p.Label,
			Probability: p.Probability,
			Score:       p.RawProbability,
		})
	}
	if result.Saved && c.Images != nil {
		resp.ImageURL = c.Images.URLPath(result.ImagePath)
	}

	return ctx.JSON(http.StatusOK, resp)
}
