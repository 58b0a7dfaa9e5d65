package classifier

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/tsuchida/bunrui-go/internal/errors"
)

// Class is one entry of the model's class index: the opaque class identifier
// (WordNet id for ImageNet models) and the model's native label.
type Class struct {
	ID   string // e.g. "n02099601"
	Name string // e.g. "golden_retriever"
}

// LoadClassIndex reads the class index file mapping output vector positions
// to class ids and native labels. The file uses the ImageNet class index
// format: {"0": ["n01440764", "tench"], "1": [...], ...}. The index must be
// dense, a gap means labels would pair with the wrong output positions.
func LoadClassIndex(path string) ([]Class, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is from application settings
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryLabelLoad).
			Context("operation", "read_class_index").
			FileContext(path, 0).
			Build()
	}

	var raw map[string][2]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryLabelLoad).
			Context("operation", "parse_class_index").
			FileContext(path, int64(len(data))).
			Build()
	}

	if len(raw) == 0 {
		return nil, errors.Newf("class index contains no entries").
			Category(errors.CategoryLabelLoad).
			FileContext(path, int64(len(data))).
			Build()
	}

	classes := make([]Class, len(raw))
	for key, value := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(classes) {
			return nil, errors.Newf("class index key %q is not a valid dense position", key).
				Category(errors.CategoryLabelLoad).
				Context("entry_count", len(raw)).
				Build()
		}
		classes[idx] = Class{ID: value[0], Name: value[1]}
	}

	// A duplicate key would leave another position zero-valued
	for i := range classes {
		if classes[i].ID == "" {
			return nil, errors.Newf("class index is missing position %d", i).
				Category(errors.CategoryLabelLoad).
				Context("entry_count", len(raw)).
				Build()
		}
	}

	return classes, nil
}
