package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsuchida/bunrui-go/internal/classifier"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/datastore"
	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/imagestore"
	"github.com/tsuchida/bunrui-go/internal/locale"
)

// FileAnalysis classifies a single image file from the command line and
// prints the ranked predictions. With save enabled the result is also
// persisted the same way a web upload would be.
func FileAnalysis(settings *conf.Settings, save bool) error {
	path := settings.Input.Path
	if path == "" {
		return errors.Newf("no input file specified").
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(err).
			Component("analysis").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	clf, err := classifier.New(settings)
	if err != nil {
		return err
	}
	defer clf.Delete()

	labels, err := locale.LoadShared(settings.Classifier.LocalePath)
	if err != nil {
		return err
	}

	var store datastore.Interface
	var images *imagestore.Store
	if save {
		store = datastore.New(settings)
		if err := store.Open(); err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		images, err = imagestore.New(&settings.Upload)
		if err != nil {
			return err
		}
	}

	analyzer := NewAnalyzer(settings, clf, store, images, labels)
	result, err := analyzer.Analyze(data, filepath.Base(path), save)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", path)
	for i, p := range result.Predictions {
		fmt.Printf("%d. %s (%s)\n", i+1, p.Label, p.Probability)
	}
	fmt.Printf("Model: %s, processing time: %.3fs\n", result.ModelVersion, result.ProcessingTime)
	if save {
		if result.Saved {
			fmt.Printf("Saved as result #%d\n", result.ResultID)
		} else {
			fmt.Println(result.SaveWarning)
		}
	}
	return nil
}
