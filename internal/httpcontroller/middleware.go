package httpcontroller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(s.GzipMiddleware())
	s.Echo.Use(s.BodyLimitMiddleware())
	s.Echo.Use(s.MetricsMiddleware())
	if s.Settings.Security.RedirectToHTTPS {
		s.Echo.Use(middleware.HTTPSRedirect())
	}
}

// GzipMiddleware compresses responses, skipping the metrics endpoint
// and image blobs.
func (s *Server) GzipMiddleware() echo.MiddlewareFunc {
	return middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/metrics" || strings.HasPrefix(path, "/media/")
		},
	})
}

// BodyLimitMiddleware caps request bodies slightly above the upload
// limit so oversize uploads still reach the validation error path.
func (s *Server) BodyLimitMiddleware() echo.MiddlewareFunc {
	const mb = int64(1024 * 1024)
	limitMB := (s.Settings.Upload.MaxSize + 2*mb - 1) / mb
	if limitMB <= 0 {
		limitMB = 11
	}
	return middleware.BodyLimit(fmt.Sprintf("%dM", limitMB))
}

// MetricsMiddleware records request counters, durations and the access
// log line for every request.
func (s *Server) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			status := c.Response().Status
			if err != nil {
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				}
			}

			if s.Metrics != nil {
				s.Metrics.HTTP.RecordRequest(c.Request().Method, c.Path(), status,
					latency.Seconds(), c.Response().Size)
			}
			s.logRequest(c, latency, c.Response().Size)
			return err
		}
	}
}
