package classifier

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
)

// Tensor is a prepared model input: NHWC float32 with batch size 1.
type Tensor struct {
	Data     []float32
	Width    int
	Height   int
	Channels int
}

// ImageNet channel statistics for input normalization. These must match the
// exported model exactly, a mismatch produces silently wrong predictions
// with no error raised.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// ValidateUpload checks an uploaded file against the configured size limit
// and extension allow-list before any bytes are decoded. Failures carry a
// user-facing message.
func ValidateUpload(settings *conf.UploadConfig, filename string, size int64) error {
	if filename == "" {
		return errors.Newf("no file was selected").
			Component("classifier").
			Category(errors.CategoryValidation).
			Build()
	}

	if size <= 0 {
		return errors.Newf("the uploaded file is empty").
			Component("classifier").
			Category(errors.CategoryValidation).
			Context("file_size", size).
			Build()
	}

	maxSize := settings.MaxSize
	if maxSize <= 0 {
		maxSize = conf.DefaultMaxUploadSize
	}
	if size > maxSize {
		return errors.Newf("the file is too large (maximum %d MB)", maxSize/(1024*1024)).
			Component("classifier").
			Category(errors.CategoryValidation).
			Context("file_size", size).
			Context("max_size", maxSize).
			Build()
	}

	allowed := settings.AllowedExtensions
	if len(allowed) == 0 {
		allowed = conf.DefaultImageExtensions
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(allowed, ext) {
		return errors.Newf("unsupported file format (supported: %s)", strings.Join(allowed, ", ")).
			Component("classifier").
			Category(errors.CategoryValidation).
			Context("file_extension", ext).
			Build()
	}

	return nil
}

// Preprocess decodes an uploaded image and converts it into the fixed-size
// normalized tensor the model expects. The reader is consumed fully, callers
// that want to reuse the stream must rewind it themselves.
//
// The resize is deliberately non-aspect-preserving: the model was trained on
// square inputs and the upstream pipeline squashes rather than crops.
func Preprocess(r io.Reader) (*Tensor, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to decode image: %w", err)).
			Component("classifier").
			Category(errors.CategoryImageDecode).
			Build()
	}

	resized := imaging.Resize(img, conf.InputWidth, conf.InputHeight, imaging.Lanczos)

	tensor := &Tensor{
		Data:     make([]float32, conf.InputWidth*conf.InputHeight*conf.NumChannels),
		Width:    conf.InputWidth,
		Height:   conf.InputHeight,
		Channels: conf.NumChannels,
	}

	// NHWC layout with batch dimension 1, channel values scaled to [0,1]
	// then normalized with the ImageNet statistics
	i := 0
	for y := 0; y < conf.InputHeight; y++ {
		for x := 0; x < conf.InputWidth; x++ {
			r16, g16, b16, _ := resized.At(x, y).RGBA()
			tensor.Data[i] = ((float32(r16>>8) / 255.0) - imagenetMean[0]) / imagenetStd[0]
			tensor.Data[i+1] = ((float32(g16>>8) / 255.0) - imagenetMean[1]) / imagenetStd[1]
			tensor.Data[i+2] = ((float32(b16>>8) / 255.0) - imagenetMean[2]) / imagenetStd[2]
			i += conf.NumChannels
		}
	}

	return tensor, nil
}
