package locale

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/errors"
)

func writeLocaleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class_index_jp.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidFile(t *testing.T) {
	t.Parallel()

	path := writeLocaleFile(t, `[
		{"num": "n02099601", "ja": "ゴールデンレトリバー"},
		{"num": "n02099712", "ja": "ラブラドールレトリバー"},
		{"num": "n01440764", "ja": "テンチ"}
	]`)

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	label, ok := table.Localize("n02099601")
	assert.True(t, ok)
	assert.Equal(t, "ゴールデンレトリバー", label)

	_, ok = table.Localize("n00000000")
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLabelLoad))
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := writeLocaleFile(t, `{"num": "not-an-array"`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLabelLoad))
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	path := writeLocaleFile(t, `[]`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLocalizeDeterministic(t *testing.T) {
	t.Parallel()

	path := writeLocaleFile(t, `[{"num": "n02099601", "ja": "ゴールデンレトリバー"}]`)
	table, err := Load(path)
	require.NoError(t, err)

	first, ok1 := table.Localize("n02099601")
	second, ok2 := table.Localize("n02099601")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestDisplayLabelFallback(t *testing.T) {
	t.Parallel()

	path := writeLocaleFile(t, `[{"num": "n02099601", "ja": "ゴールデンレトリバー"}]`)
	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ゴールデンレトリバー", table.DisplayLabel("n02099601", "golden_retriever"))
	assert.Equal(t, "golden retriever", table.DisplayLabel("n99999999", "golden_retriever"))
	assert.Equal(t, "tiger shark", table.DisplayLabel("", "tiger_shark"))
}

func TestFallbackLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "golden retriever", FallbackLabel("golden_retriever"))
	assert.Equal(t, "tench", FallbackLabel("tench"))
	assert.Equal(t, "", FallbackLabel(""))
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	// Decomposed ハ + ゛ must equal the composed バ form after normalization
	composed := "バラ"
	decomposed := "バラ"
	assert.Equal(t, NormalizeQuery(composed), NormalizeQuery(decomposed))
	assert.Equal(t, "abc", NormalizeQuery("  abc "))
}

func TestLoadSharedConcurrentFirstUse(t *testing.T) {
	path := writeLocaleFile(t, `[{"num": "n02099601", "ja": "ゴールデンレトリバー"}]`)

	var wg sync.WaitGroup
	tables := make([]*Table, 16)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := LoadShared(path)
			assert.NoError(t, err)
			tables[i] = table
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(tables); i++ {
		assert.Same(t, tables[0], tables[i], "all callers must share one table")
	}
}
