// internal/api/v2/health.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthResponse reports service liveness and basic runtime info.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	ModelVersion  string  `json:"model_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health serves the liveness endpoint. The classifier is constructed
// before the listener starts, so a serving process is a healthy one.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &HealthResponse{
		Status:        "healthy",
		Version:       c.Settings.Version,
		ModelVersion:  c.Settings.Classifier.VersionString(),
		UptimeSeconds: time.Since(c.startTime).Seconds(),
	})
}
