// Package serve implements the web service command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tsuchida/bunrui-go/internal/analysis"
	"github.com/tsuchida/bunrui-go/internal/classifier"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/datastore"
	"github.com/tsuchida/bunrui-go/internal/httpcontroller"
	"github.com/tsuchida/bunrui-go/internal/imagestore"
	"github.com/tsuchida/bunrui-go/internal/locale"
	"github.com/tsuchida/bunrui-go/internal/logging"
	"github.com/tsuchida/bunrui-go/internal/observability"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the classification web service",
		Long:  "Load the model, open the datastore and serve the HTTP API. The listener starts only after the model is ready.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the web server")
	cmd.Flags().StringVar(&settings.Upload.Path, "uploadpath", viper.GetString("upload.path"), "Directory for uploaded images")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}

// Run builds every component and serves HTTP until the context is
// cancelled or a termination signal arrives. Model, labels and store
// are all loaded before the listener starts, a serving process always
// has a working pipeline.
func Run(ctx context.Context, settings *conf.Settings) error {
	logger := logging.ForService("serve")
	logHostInfo(settings)

	loadStart := time.Now()
	clf, err := classifier.New(settings)
	if err != nil {
		return err
	}
	defer clf.Delete()
	logger.Info("classifier ready",
		"model", settings.Classifier.VersionString(),
		"classes", len(clf.Classes),
		"load_time_ms", time.Since(loadStart).Milliseconds())

	labels, err := locale.LoadShared(settings.Classifier.LocalePath)
	if err != nil {
		return err
	}
	logger.Info("locale table loaded", "entries", labels.Len())

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	images, err := imagestore.New(&settings.Upload)
	if err != nil {
		return err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}
	metrics.Classifier.RecordModelLoad(time.Since(loadStart).Seconds())
	datastore.SetMetrics(metrics.Datastore)

	analyzer := analysis.NewAnalyzer(settings, clf, store, images, labels)
	analyzer.SetMetrics(metrics.Classifier)

	server, err := httpcontroller.New(settings, store, analyzer, images, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		server.Start()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// logHostInfo logs basic platform information at startup.
func logHostInfo(settings *conf.Settings) {
	info, err := host.Info()
	if err != nil {
		logging.Warn("failed to read host info", "error", err)
		return
	}
	attrs := []any{
		"version", settings.Version,
		"build_date", settings.BuildDate,
		"os", info.OS,
		"platform", info.Platform,
		"platform_version", info.PlatformVersion,
		"kernel_arch", info.KernelArch,
		"container", conf.RunningInContainer(),
	}
	if conf.IsLinuxArm64() {
		if board := conf.GetBoardModel(); board != "" {
			attrs = append(attrs, "board_model", board)
		}
	}
	logging.Info("starting bunrui-go", attrs...)
}
