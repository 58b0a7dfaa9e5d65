// Package locale maps model class identifiers to display labels in the
// configured language. The table is static reference data loaded once at
// startup and immutable afterwards, so lookups need no locking.
package locale

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/tsuchida/bunrui-go/internal/errors"
	"golang.org/x/text/unicode/norm"
)

// Entry is one record of the localized class index file, an array of
// {"num": "<class id>", "ja": "<label>"} objects.
type Entry struct {
	Num string `json:"num"`
	Ja  string `json:"ja"`
}

// Table holds the immutable class id to localized label mapping.
type Table struct {
	labels map[string]string
}

// Load reads and parses the localized class index file. A missing or
// malformed file is a startup-fatal configuration problem, callers should
// not serve requests without the table.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from application settings
	if err != nil {
		return nil, errors.New(err).
			Component("locale").
			Category(errors.CategoryLabelLoad).
			Context("operation", "read_locale_file").
			FileContext(path, 0).
			Build()
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.New(err).
			Component("locale").
			Category(errors.CategoryLabelLoad).
			Context("operation", "parse_locale_file").
			FileContext(path, int64(len(data))).
			Build()
	}

	if len(entries) == 0 {
		return nil, errors.Newf("locale file contains no entries").
			Component("locale").
			Category(errors.CategoryLabelLoad).
			FileContext(path, int64(len(data))).
			Build()
	}

	labels := make(map[string]string, len(entries))
	for i := range entries {
		if entries[i].Num == "" {
			continue
		}
		labels[entries[i].Num] = entries[i].Ja
	}

	return &Table{labels: labels}, nil
}

// Localize looks up a class id in the table. The reference data is known to
// be incomplete, a miss returns false and never an error.
func (t *Table) Localize(classID string) (string, bool) {
	label, ok := t.labels[classID]
	if !ok || label == "" {
		return "", false
	}
	return label, true
}

// DisplayLabel returns the localized label for a class id, falling back to
// the model's native label with underscores replaced by spaces when the
// class id is absent from the table.
func (t *Table) DisplayLabel(classID, nativeLabel string) string {
	if label, ok := t.Localize(classID); ok {
		return label
	}
	return FallbackLabel(nativeLabel)
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.labels)
}

// FallbackLabel normalizes a model native label for display.
func FallbackLabel(nativeLabel string) string {
	return strings.ReplaceAll(nativeLabel, "_", " ")
}

// NormalizeQuery NFC-normalizes a search query so composed and decomposed
// Japanese input match the stored labels.
func NormalizeQuery(query string) string {
	return norm.NFC.String(strings.TrimSpace(query))
}

var (
	sharedTable *Table
	sharedErr   error
	loadOnce    sync.Once
)

// LoadShared loads the process-wide table exactly once, subsequent calls
// return the same table. Safe under concurrent first use.
func LoadShared(path string) (*Table, error) {
	loadOnce.Do(func() {
		sharedTable, sharedErr = Load(path)
	})
	return sharedTable, sharedErr
}
