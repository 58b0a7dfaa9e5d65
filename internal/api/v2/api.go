// internal/api/v2/api.go
package api

import (
	"crypto/rand"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"github.com/tsuchida/bunrui-go/internal/analysis"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/datastore"
	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/imagestore"
	"github.com/tsuchida/bunrui-go/internal/logging"
	"github.com/tsuchida/bunrui-go/internal/observability"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Analyzer *analysis.Analyzer
	Images   *imagestore.Store

	logger         *log.Logger
	apiLogger      *slog.Logger // structured logger for API operations
	apiLoggerClose func() error // closes the API log file
	metrics        *observability.Metrics
	statsCache     *cache.Cache // short-lived cache for statistics queries
	startTime      time.Time
}

// statistics cache tuning
const (
	statsCacheTTL     = 30 * time.Second
	statsCacheCleanup = 2 * time.Minute
	statsCacheKey     = "statistics"
)

// New creates a new API controller and registers its routes under
// /api/v2 on the given echo instance.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	analyzer *analysis.Analyzer, images *imagestore.Store,
	metrics *observability.Metrics, logger *log.Logger) (*Controller, error) {

	if logger == nil {
		logger = log.Default()
	}

	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		Analyzer:   analyzer,
		Images:     images,
		logger:     logger,
		metrics:    metrics,
		statsCache: cache.New(statsCacheTTL, statsCacheCleanup),
		startTime:  time.Now(),
	}

	// Dedicated rotating log file for API requests, falls back to the
	// shared structured logger when the file cannot be opened.
	if err := c.initFileLogger(); err != nil {
		logger.Printf("warning: failed to initialize API log file: %v", err)
		c.apiLogger = logging.ForService("api")
	}

	c.Group = e.Group("/api/v2")
	c.initRoutes()

	return c, nil
}

func (c *Controller) initFileLogger() error {
	logPath := filepath.Join("logs", "web.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}

	logConf := &c.Settings.WebServer.Log
	level := slog.LevelInfo
	if c.Settings.WebServer.Debug {
		level = slog.LevelDebug
	}

	logger, closeFunc, err := logging.NewFileLogger(logPath, "api", logConf, level)
	if err != nil {
		return err
	}
	c.apiLogger = logger
	c.apiLoggerClose = closeFunc
	return nil
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.Health)
	c.Group.POST("/analyze", c.AnalyzeImage)
	c.Group.GET("/results", c.ListResults)
	c.Group.GET("/results/:id", c.GetResult)
	c.Group.DELETE("/results/:id", c.DeleteResult)
	c.Group.GET("/statistics", c.GetStatistics)
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("failed to close API log file: %v", err)
		}
	}
}

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response. Database and file
// system errors carry driver messages and on-disk paths, so for those
// only the public message goes to the client; the full error stays in
// the server logs under the same correlation id.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	errorStr := message
	if err != nil && !hasInternalDetail(err) {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// hasInternalDetail reports whether an error's text must not be echoed
// back to clients.
func hasInternalDetail(err error) bool {
	return errors.IsCategory(err, errors.CategoryDatabase) ||
		errors.IsCategory(err, errors.CategoryFileIO)
}

// generateCorrelationID creates a unique identifier for error tracking.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	ip := ctx.RealIP()
	c.logger.Printf("API Error [%s] from %s: %s: %v", errorResp.CorrelationID, ip, message, err)

	if c.apiLogger != nil {
		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", err,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ip,
		)
	}

	return ctx.JSON(code, errorResp)
}

// mapError translates error categories into HTTP status codes and
// returns the JSON error response.
func (c *Controller) mapError(ctx echo.Context, err error, message string) error {
	switch {
	case errors.IsValidation(err), errors.IsCategory(err, errors.CategoryImageDecode):
		return c.HandleError(ctx, err, message, http.StatusBadRequest)
	case errors.IsNotFound(err):
		return c.HandleError(ctx, err, message, http.StatusNotFound)
	case errors.IsCategory(err, errors.CategoryModelNotLoaded):
		return c.HandleError(ctx, err, message, http.StatusServiceUnavailable)
	default:
		return c.HandleError(ctx, err, message, http.StatusInternalServerError)
	}
}

// Debug logs debug messages when web server debug mode is enabled.
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings.WebServer.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)
		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}

// logAPIRequest logs API requests with common context fields.
func (c *Controller) logAPIRequest(ctx echo.Context, level slog.Level, msg string, args ...any) {
	if c.apiLogger == nil {
		return
	}

	baseAttrs := []any{
		"path", ctx.Request().URL.Path,
		"ip", ctx.RealIP(),
	}
	baseAttrs = append(baseAttrs, args...)

	switch level {
	case slog.LevelDebug:
		c.apiLogger.Debug(msg, baseAttrs...)
	case slog.LevelInfo:
		c.apiLogger.Info(msg, baseAttrs...)
	case slog.LevelWarn:
		c.apiLogger.Warn(msg, baseAttrs...)
	case slog.LevelError:
		c.apiLogger.Error(msg, baseAttrs...)
	default:
		c.apiLogger.Log(ctx.Request().Context(), level, msg, baseAttrs...)
	}
}
