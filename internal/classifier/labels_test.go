package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/errors"
)

func writeClassIndex(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class_index.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadClassIndex(t *testing.T) {
	t.Parallel()

	path := writeClassIndex(t, `{
		"0": ["n01440764", "tench"],
		"1": ["n01443537", "goldfish"],
		"2": ["n02099601", "golden_retriever"]
	}`)

	classes, err := LoadClassIndex(path)
	require.NoError(t, err)
	require.Len(t, classes, 3)

	assert.Equal(t, "n01440764", classes[0].ID)
	assert.Equal(t, "tench", classes[0].Name)
	assert.Equal(t, "golden_retriever", classes[2].Name)
}

func TestLoadClassIndexMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadClassIndex(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLabelLoad))
}

func TestLoadClassIndexMalformed(t *testing.T) {
	t.Parallel()

	path := writeClassIndex(t, `["not", "a", "map"]`)
	_, err := LoadClassIndex(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLabelLoad))
}

func TestLoadClassIndexRejectsSparseIndex(t *testing.T) {
	t.Parallel()

	// Position 1 is missing, labels would shift against the output vector
	path := writeClassIndex(t, `{
		"0": ["n01440764", "tench"],
		"2": ["n02099601", "golden_retriever"]
	}`)

	_, err := LoadClassIndex(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLabelLoad))
}

func TestLoadClassIndexRejectsNonNumericKey(t *testing.T) {
	t.Parallel()

	path := writeClassIndex(t, `{"zero": ["n01440764", "tench"]}`)
	_, err := LoadClassIndex(path)
	require.Error(t, err)
}
