// internal/httpcontroller/server.go
package httpcontroller

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tsuchida/bunrui-go/internal/analysis"
	"github.com/tsuchida/bunrui-go/internal/api/v2"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/datastore"
	"github.com/tsuchida/bunrui-go/internal/imagestore"
	"github.com/tsuchida/bunrui-go/internal/logging"
	"github.com/tsuchida/bunrui-go/internal/observability"
	"golang.org/x/crypto/acme/autocert"
)

// Server encapsulates the Echo server and its wiring.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	Analyzer *analysis.Analyzer
	Images   *imagestore.Store
	Metrics  *observability.Metrics
	APIV2    *api.Controller

	webLogger      *slog.Logger // structured logger for web operations
	webLoggerClose func() error // closes the web log file
}

// New initializes a new HTTP server with the given components.
func New(settings *conf.Settings, dataStore datastore.Interface, analyzer *analysis.Analyzer,
	images *imagestore.Store, metrics *observability.Metrics) (*Server, error) {
	configureDefaultSettings(settings)

	s := &Server{
		Echo:     echo.New(),
		DS:       dataStore,
		Settings: settings,
		Analyzer: analyzer,
		Images:   images,
		Metrics:  metrics,
	}

	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	if err := s.initializeServer(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeServer configures middleware and routes.
func (s *Server) initializeServer() error {
	s.Echo.HideBanner = true
	s.initLogger()
	s.configureMiddleware()
	s.initRoutes()

	s.Debug("Initializing JSON API v2")
	apiController, err := api.New(s.Echo, s.DS, s.Settings, s.Analyzer, s.Images, s.Metrics, log.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize API: %w", err)
	}
	s.APIV2 = apiController
	return nil
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() {
	errChan := make(chan error)

	go func() {
		var err error

		if s.Settings.Security.AutoTLS {
			configPaths, configErr := conf.GetDefaultConfigPaths()
			if configErr != nil {
				errChan <- fmt.Errorf("failed to get config paths: %w", configErr)
				return
			}

			s.Echo.AutoTLSManager.Prompt = autocert.AcceptTOS
			s.Echo.AutoTLSManager.Cache = autocert.DirCache(configPaths[0])
			s.Echo.AutoTLSManager.HostPolicy = autocert.HostWhitelist(s.Settings.Security.Host)

			err = s.Echo.StartAutoTLS(":" + s.Settings.WebServer.Port)
		} else {
			err = s.Echo.Start(":" + s.Settings.WebServer.Port)
		}

		if err != nil {
			errChan <- err
		}
	}()

	go handleServerError(errChan)

	fmt.Printf("HTTP server started on port %s (AutoTLS: %v)\n", s.Settings.WebServer.Port, s.Settings.Security.AutoTLS)
}

// Shutdown gracefully stops the server and closes the web log file.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.APIV2 != nil {
		s.APIV2.Shutdown()
	}
	err := s.Echo.Shutdown(ctx)
	if s.webLoggerClose != nil {
		if closeErr := s.webLoggerClose(); closeErr != nil {
			log.Printf("Failed to close web log file: %v", closeErr)
		}
	}
	return err
}

// RealIP returns the originating client IP for the request.
func (s *Server) RealIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	ip, _, _ := net.SplitHostPort(c.Request().RemoteAddr)
	return ip
}

// configureDefaultSettings sets default values for server settings.
func configureDefaultSettings(settings *conf.Settings) {
	if settings.WebServer.Port == "" {
		settings.WebServer.Port = "8080"
	}
}

// handleServerError listens for server errors and logs them.
func handleServerError(errChan chan error) {
	for err := range errChan {
		log.Printf("Server error: %v", err)
	}
}

// initLogger initializes the structured web request logger.
func (s *Server) initLogger() {
	if !s.Settings.WebServer.Log.Enabled {
		return
	}

	webLogPath := "logs/web.log"
	webLogger, closeFunc, err := logging.NewFileLogger(webLogPath, "web", &s.Settings.WebServer.Log, slog.LevelInfo)
	if err != nil {
		log.Printf("Warning: Failed to initialize web structured logger: %v", err)
		return
	}
	s.webLogger = webLogger
	s.webLoggerClose = closeFunc
	log.Printf("Web structured logging initialized to %s", webLogPath)

	// Discard Echo's default log output, rely on middleware
	s.Echo.Logger.SetOutput(io.Discard)
	s.Echo.Logger.SetLevel(99)
}

// Debug logs debug messages if web server debug mode is enabled.
func (s *Server) Debug(format string, v ...any) {
	if s.Settings.WebServer.Debug {
		log.Printf("[DEBUG] "+format, v...)
		if s.webLogger != nil {
			s.webLogger.Debug(fmt.Sprintf(format, v...))
		}
	}
}

// logRequest writes one access log line for a completed request.
func (s *Server) logRequest(c echo.Context, latency time.Duration, responseSize int64) {
	if s.webLogger == nil {
		return
	}
	s.webLogger.Info("request",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"status", c.Response().Status,
		"ip", s.RealIP(c),
		"latency_ms", latency.Milliseconds(),
		"bytes", responseSize,
	)
}
