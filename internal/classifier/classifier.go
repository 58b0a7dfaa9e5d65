// classifier.go EfficientNet model specific code
package classifier

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/logging"
	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"
)

// Classifier wraps the TensorFlow Lite interpreter and the class index for
// the image classification model. One instance is shared by all requests in
// the process and must be fully constructed before requests are accepted.
type Classifier struct {
	interpreter *tflite.Interpreter
	Settings    *conf.Settings
	Classes     []Class // index-aligned with the model output vector
	logger      *slog.Logger

	// Interpreter access is serialized, concurrent Invoke on a single
	// interpreter is not safe.
	mu sync.Mutex
}

// New initializes a new Classifier instance with the given settings. The
// model and the class index are loaded here, never lazily in the request
// path: loading a large pretrained model per request is prohibitively slow.
func New(settings *conf.Settings) (*Classifier, error) {
	c := &Classifier{
		Settings: settings,
		logger:   logging.ForService("classifier"),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	classes, err := LoadClassIndex(settings.Classifier.LabelPath)
	if err != nil {
		return nil, errors.New(fmt.Errorf("classifier: failed to load class index: %w", err)).
			Component("classifier").
			Category(errors.CategoryLabelLoad).
			FileContext(settings.Classifier.LabelPath, 0).
			Build()
	}
	c.Classes = classes

	if err := c.initializeModel(); err != nil {
		return nil, errors.New(fmt.Errorf("classifier: failed to initialize model: %w", err)).
			Component("classifier").
			Category(errors.CategoryModelInit).
			ModelContext(settings.Classifier.ModelPath, settings.Classifier.VersionString()).
			Build()
	}

	if err := c.validateModelAndLabels(); err != nil {
		return nil, errors.New(fmt.Errorf("classifier: model validation failed: %w", err)).
			Component("classifier").
			Category(errors.CategoryModelInit).
			ModelContext(settings.Classifier.ModelPath, settings.Classifier.VersionString()).
			Build()
	}

	return c, nil
}

// initializeModel loads the TensorFlow Lite model and allocates the interpreter.
func (c *Classifier) initializeModel() error {
	start := time.Now()

	modelData, err := os.ReadFile(c.Settings.Classifier.ModelPath) //nolint:gosec // G304: model path is from application settings
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryModelLoad).
			ModelContext(c.Settings.Classifier.ModelPath, c.Settings.Classifier.VersionString()).
			Timing("model-load", time.Since(start)).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return errors.New(fmt.Errorf("cannot load TensorFlow Lite model")).
			Category(errors.CategoryModelInit).
			ModelContext(c.Settings.Classifier.ModelPath, c.Settings.Classifier.VersionString()).
			Context("model_size_mb", len(modelData)/1024/1024).
			Context("use_xnnpack", c.Settings.Classifier.UseXNNPACK).
			Timing("model-init", time.Since(start)).
			Build()
	}

	// Determine the number of threads for the interpreter based on settings
	// and system capacity.
	threads := c.determineThreadCount(c.Settings.Classifier.Threads)

	options := tflite.NewInterpreterOptions()

	// Try to use XNNPACK delegate if enabled in settings
	if c.Settings.Classifier.UseXNNPACK {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threads-1))}) //nolint:gosec // G115: thread count bounded by CPU count, safe conversion
		if delegate == nil {
			c.logger.Warn("failed to create XNNPACK delegate, falling back to default CPU")
			options.SetNumThread(threads)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threads)
	}

	options.SetErrorReporter(func(msg string, userData any) {
		logging.ForService("classifier").Error("TFLite error", "message", msg)
	}, nil)

	c.interpreter = tflite.NewInterpreter(model, options)
	if c.interpreter == nil {
		return fmt.Errorf("cannot create interpreter")
	}
	if status := c.interpreter.AllocateTensors(); status != tflite.OK {
		return fmt.Errorf("tensor allocation failed")
	}

	// The model data is no longer needed, TFLite keeps its own internal copy
	runtime.GC()

	c.logger.Info("classification model initialized",
		"model", c.Settings.Classifier.VersionString(),
		"classes", len(c.Classes),
		"threads", threads,
		"total_cpus", runtime.NumCPU(),
		"xnnpack", c.Settings.Classifier.UseXNNPACK,
		"duration", time.Since(start))
	return nil
}

// validateModelAndLabels checks that the class index size matches the model
// output vector, a mismatch would silently pair labels with the wrong scores.
func (c *Classifier) validateModelAndLabels() error {
	outputTensor := c.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return fmt.Errorf("cannot get output tensor")
	}

	outputSize := 1
	for i := range outputTensor.NumDims() {
		outputSize *= outputTensor.Dim(i)
	}

	if outputSize != len(c.Classes) {
		return fmt.Errorf("class index count (%d) does not match model output size (%d)",
			len(c.Classes), outputSize)
	}

	c.logger.Debug("model validation successful",
		"output_size", outputSize, "class_count", len(c.Classes))
	return nil
}

// Delete releases resources used by the TensorFlow Lite interpreter.
func (c *Classifier) Delete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interpreter != nil {
		c.interpreter.Delete()
		c.interpreter = nil
	}
}
