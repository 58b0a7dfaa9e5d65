// internal/api/v2/results.go
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/datastore"
)

// ResultView is a stored analysis result prepared for API responses.
type ResultView struct {
	ID               uint    `json:"id"`
	Label            string  `json:"label"`
	Score            float64 `json:"score"`
	FormattedScore   string  `json:"formatted_score"`
	ConfidenceLevel  string  `json:"confidence_level"`
	OriginalFilename string  `json:"original_filename"`
	ImageURL         string  `json:"image_url,omitempty"`
	ModelVersion     string  `json:"model_version"`
	ProcessingTime   float64 `json:"processing_time"`
	CreatedAt        string  `json:"created_at"`
}

// ResultsPage is the paginated list response.
type ResultsPage struct {
	Results    []ResultView `json:"data"`
	Total      int64        `json:"total"`
	Page       int          `json:"current_page"`
	TotalPages int          `json:"total_pages"`
	PageSize   int          `json:"page_size"`
	Search     string       `json:"search,omitempty"`
}

func (c *Controller) resultView(r *datastore.AnalysisResult) ResultView {
	view := ResultView{
		ID:               r.ID,
		Label:            r.PredictionLabel,
		Score:            r.PredictionScore,
		FormattedScore:   r.FormattedScore(),
		ConfidenceLevel:  r.ConfidenceLevel(),
		OriginalFilename: r.OriginalFilename,
		ModelVersion:     r.ModelVersion,
		ProcessingTime:   r.ProcessingTime,
		CreatedAt:        r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.ImagePath != "" && c.Images != nil {
		view.ImageURL = c.Images.URLPath(r.ImagePath)
	}
	return view
}

// ListResults serves the paginated, searchable analysis history.
// Invalid page values fall back to the first page, out-of-range pages
// are clamped by the datastore.
func (c *Controller) ListResults(ctx echo.Context) error {
	page := datastore.ParsePage(ctx.QueryParam("page"))
	search := ctx.QueryParam("search")

	listPage, err := c.DS.List(page, conf.DefaultItemsPerPage, search)
	if err != nil {
		return c.mapError(ctx, err, "failed to list analysis results")
	}

	resp := &ResultsPage{
		Results:    make([]ResultView, 0, len(listPage.Results)),
		Total:      listPage.Total,
		Page:       listPage.Page,
		TotalPages: listPage.TotalPages,
		PageSize:   listPage.PageSize,
		Search:     search,
	}
	for i := range listPage.Results {
		resp.Results = append(resp.Results, c.resultView(&listPage.Results[i]))
	}

	return ctx.JSON(http.StatusOK, resp)
}

// GetResult serves a single analysis result by ID.
func (c *Controller) GetResult(ctx echo.Context) error {
	id, err := parseResultID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "invalid result ID", http.StatusBadRequest)
	}

	result, err := c.DS.Get(id)
	if err != nil {
		return c.mapError(ctx, err, "failed to get analysis result")
	}

	return ctx.JSON(http.StatusOK, c.resultView(&result))
}

// DeleteResult removes a stored result row and then its image blob.
// The row is the source of truth, a failed blob removal is logged but
// does not fail the request.
func (c *Controller) DeleteResult(ctx echo.Context) error {
	id, err := parseResultID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "invalid result ID", http.StatusBadRequest)
	}

	result, err := c.DS.Get(id)
	if err != nil {
		return c.mapError(ctx, err, "failed to get analysis result")
	}

	if err := c.DS.Delete(id); err != nil {
		return c.mapError(ctx, err, "failed to delete analysis result")
	}

	if result.ImagePath != "" && c.Images != nil {
		if err := c.Images.Remove(result.ImagePath); err != nil {
			c.logAPIRequest(ctx, slog.LevelWarn, "failed to remove image blob",
				"id", id, "image_path", result.ImagePath, "error", err.Error())
		}
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "analysis result deleted", "id", id)
	return ctx.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("analysis result %d deleted", id),
	})
}

func parseResultID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
