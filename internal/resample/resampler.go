// Package resample turns a cropped source region into a raster of exact
// target dimensions.
package resample

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/media-exporter/internal/model"
)

// ErrEmptyCrop is returned when the crop rectangle covers no source pixels.
var ErrEmptyCrop = errors.New("crop rectangle has zero area")

// A single large-ratio downscale aliases badly, so intermediate halving
// steps run while both dimensions stay above this multiple of the target.
const halvingThreshold = 1.5

// JPEG quality factor bounds accepted by Encode.
const (
	MinQuality = 0.05
	MaxQuality = 1.0
)

// Resample extracts the crop rectangle from the source image and scales it
// to exactly target.Width x target.Height. Large reductions run through
// repeated halving passes before the final precise resize, which bounds the
// per-step reduction ratio and avoids downscale aliasing.
func Resample(img image.Image, crop model.CropRect, target model.TargetSize) (*image.NRGBA, error) {
	if target.Width <= 0 || target.Height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", target.Width, target.Height)
	}

	region := imaging.Crop(img, crop.Rect())
	if region.Bounds().Dx() == 0 || region.Bounds().Dy() == 0 {
		return nil, ErrEmptyCrop
	}

	// Halve while both halved axes would still exceed the threshold, then
	// do one high-quality pass to the exact target size.
	cur := region
	for shouldHalve(cur.Bounds().Dx(), cur.Bounds().Dy(), target) {
		cur = imaging.Resize(cur, cur.Bounds().Dx()/2, cur.Bounds().Dy()/2, imaging.Linear)
	}

	final := imaging.Resize(cur, target.Width, target.Height, imaging.Lanczos)
	if final.Bounds().Dx() != target.Width || final.Bounds().Dy() != target.Height {
		return nil, fmt.Errorf("resample produced %dx%d, want %dx%d",
			final.Bounds().Dx(), final.Bounds().Dy(), target.Width, target.Height)
	}

	return final, nil
}

func shouldHalve(width, height int, target model.TargetSize) bool {
	return float64(width)/2 >= halvingThreshold*float64(target.Width) &&
		float64(height)/2 >= halvingThreshold*float64(target.Height)
}

// EncodeJPEG encodes the raster as JPEG. The quality factor is clamped into
// [MinQuality, MaxQuality] and mapped onto the encoder's 1-100 scale.
func EncodeJPEG(img image.Image, quality float64) ([]byte, error) {
	if quality < MinQuality {
		quality = MinQuality
	}
	if quality > MaxQuality {
		quality = MaxQuality
	}

	buf := new(bytes.Buffer)
	err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(int(quality*100)))
	if err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
