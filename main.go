package main

import (
	"fmt"
	"os"
	"time"

	"github.com/tsuchida/bunrui-go/cmd"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/logging"
	"github.com/tsuchida/bunrui-go/internal/telemetry"
)

// Populated via ldflags at build time.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	if err := telemetry.Init(settings); err != nil {
		logging.Warn("telemetry initialization failed", "error", err)
	}

	rootCmd := cmd.RootCommand(settings)
	err = rootCmd.Execute()

	if telemetry.IsEnabled() {
		telemetry.Flush(3 * time.Second)
	}
	if err != nil {
		os.Exit(1)
	}
}
