package classifier

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
)

func testUploadConfig() *conf.UploadConfig {
	return &conf.UploadConfig{
		MaxSize:           conf.DefaultMaxUploadSize,
		AllowedExtensions: conf.DefaultImageExtensions,
	}
}

func TestValidateUploadExtensions(t *testing.T) {
	t.Parallel()

	cfg := testUploadConfig()

	for _, ext := range []string{"jpg", "jpeg", "png", "bmp", "gif"} {
		t.Run(ext, func(t *testing.T) {
			t.Parallel()
			assert.NoError(t, ValidateUpload(cfg, "photo."+ext, 1024))
			// Extension matching is case-insensitive
			assert.NoError(t, ValidateUpload(cfg, "photo."+strings.ToUpper(ext), 1024))
		})
	}

	for _, ext := range []string{"txt", "pdf", "tiff", "webp", "exe", ""} {
		t.Run("rejects_"+ext, func(t *testing.T) {
			t.Parallel()
			err := ValidateUpload(cfg, "file."+ext, 1024)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestValidateUploadSizeBoundary(t *testing.T) {
	t.Parallel()

	cfg := testUploadConfig()

	// Exactly at the limit is accepted, one byte over is rejected
	assert.NoError(t, ValidateUpload(cfg, "photo.jpg", conf.DefaultMaxUploadSize))
	err := ValidateUpload(cfg, "photo.jpg", conf.DefaultMaxUploadSize+1)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestValidateUploadEmptyFile(t *testing.T) {
	t.Parallel()

	cfg := testUploadConfig()

	err := ValidateUpload(cfg, "photo.jpg", 0)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = ValidateUpload(cfg, "", 1024)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

// encodeTestPNG renders a small solid-color PNG in memory.
func encodeTestPNG(t *testing.T, c color.Color, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessProducesNormalizedTensor(t *testing.T) {
	t.Parallel()

	// Pure white image: every channel value is 255 before normalization
	data := encodeTestPNG(t, color.White, 64, 48)

	tensor, err := Preprocess(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, conf.InputWidth, tensor.Width)
	assert.Equal(t, conf.InputHeight, tensor.Height)
	assert.Equal(t, conf.NumChannels, tensor.Channels)
	assert.Len(t, tensor.Data, conf.InputWidth*conf.InputHeight*conf.NumChannels)

	// (1.0 - mean) / std per channel
	for ch := 0; ch < conf.NumChannels; ch++ {
		expected := (1.0 - imagenetMean[ch]) / imagenetStd[ch]
		assert.InDelta(t, expected, tensor.Data[ch], 0.01, "channel %d", ch)
	}
}

func TestPreprocessResizesNonSquareInput(t *testing.T) {
	t.Parallel()

	data := encodeTestPNG(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, 640, 120)

	tensor, err := Preprocess(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, tensor.Data, conf.InputWidth*conf.InputHeight*conf.NumChannels)

	for _, v := range tensor.Data[:30] {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestPreprocessRejectsNonImageBytes(t *testing.T) {
	t.Parallel()

	// A text file renamed to .jpg passes validation but must fail here
	err := ValidateUpload(testUploadConfig(), "notes.jpg", 20)
	require.NoError(t, err)

	_, err = Preprocess(strings.NewReader("this is not an image"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryImageDecode))
}

func TestPreprocessRejectsTruncatedImage(t *testing.T) {
	t.Parallel()

	data := encodeTestPNG(t, color.Black, 32, 32)
	_, err := Preprocess(bytes.NewReader(data[:10]))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryImageDecode))
}
