// internal/httpcontroller/routes.go
package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// initRoutes registers the non-API routes: metrics and media serving.
func (s *Server) initRoutes() {
	if s.Metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}

	s.Echo.GET("/media/uploads/*", s.ServeMedia)

	s.Echo.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/api/v2/health")
	})
}

// ServeMedia serves stored image blobs. Paths are resolved through the
// image store which rejects anything escaping the upload directory.
func (s *Server) ServeMedia(c echo.Context) error {
	if s.Images == nil {
		return echo.NewHTTPError(http.StatusNotFound, "media storage not configured")
	}

	relPath := c.Param("*")
	absPath, err := s.Images.AbsolutePath(relPath)
	if err != nil {
		s.Debug("rejected media path %q: %v", relPath, err)
		return echo.NewHTTPError(http.StatusForbidden, "invalid media path")
	}

	if !s.Images.Exists(relPath) {
		return echo.NewHTTPError(http.StatusNotFound, "media not found")
	}

	return c.File(absPath)
}
