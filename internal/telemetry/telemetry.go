// Package telemetry provides privacy-compliant error tracking, opt-in only.
package telemetry

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/logging"
)

var (
	initialized bool
	initMutex   sync.Mutex

	serviceLogger *slog.Logger
)

// PlatformInfo holds privacy-safe platform information for telemetry
type PlatformInfo struct {
	OS           string `json:"os"`
	Architecture string `json:"arch"`
	Container    bool   `json:"container"`
	BoardModel   string `json:"board_model,omitempty"`
	NumCPU       int    `json:"num_cpu"`
	GoVersion    string `json:"go_version"`
}

// collectPlatformInfo gathers privacy-safe platform information for telemetry
func collectPlatformInfo() PlatformInfo {
	info := PlatformInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		Container:    conf.RunningInContainer(),
		NumCPU:       runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}
	// SBC board identification is only meaningful on Linux arm64
	if conf.IsLinuxArm64() {
		info.BoardModel = conf.GetBoardModel()
	}
	return info
}

// Init initializes the Sentry SDK with privacy-compliant settings and wires
// the enhanced error package to report through it. Telemetry is strictly
// opt-in; when disabled this is a no-op and error reporting stays local.
func Init(settings *conf.Settings) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	serviceLogger = logging.ForService("telemetry")
	if serviceLogger == nil {
		serviceLogger = slog.Default()
	}

	if !settings.Sentry.Enabled {
		serviceLogger.Info("telemetry is disabled (opt-in required)")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		SampleRate:       1.0,
		Debug:            settings.Sentry.Debug,
		AttachStacktrace: false, // Stack traces may contain file paths
		Release:          "bunrui-go@" + settings.Version,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return scrubEvent(event)
		},
	})
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}

	configureScope(settings)

	// Route enhanced errors to Sentry from now on
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	errors.SetPrivacyScrubber(ScrubMessage)

	initialized = true
	serviceLogger.Info("telemetry initialized",
		"debug", settings.Sentry.Debug,
		"platform", collectPlatformInfo())
	return nil
}

// sentryDSN identifies the bunrui-go project, not the user.
const sentryDSN = "https://6f2b1c0d9e8a74b3a5c1d20f3e4b5a69@o450955.ingest.de.sentry.io/4509553112186960"

// configureScope attaches privacy-safe platform tags to all events
func configureScope(settings *conf.Settings) {
	info := collectPlatformInfo()
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", info.OS)
		scope.SetTag("arch", info.Architecture)
		scope.SetTag("go_version", info.GoVersion)
		scope.SetTag("model_name", settings.Classifier.ModelName)
		if info.BoardModel != "" {
			scope.SetTag("board_model", info.BoardModel)
		}
		scope.SetContext("platform", map[string]any{
			"container": info.Container,
			"num_cpu":   info.NumCPU,
		})
	})
}

// scrubEvent removes user-identifying data from an event before sending
func scrubEvent(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}

	// Never send server hostname
	event.ServerName = ""
	event.User = sentry.User{}

	event.Message = ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = ScrubMessage(event.Exception[i].Value)
	}

	return event
}

// IsEnabled returns whether telemetry reporting is active
func IsEnabled() bool {
	initMutex.Lock()
	defer initMutex.Unlock()
	return initialized
}

// Flush waits up to the given timeout for buffered events to be sent.
// Called on shutdown so pending error reports are not lost.
func Flush(timeout time.Duration) {
	initMutex.Lock()
	active := initialized
	initMutex.Unlock()

	if active {
		sentry.Flush(timeout)
	}
}
