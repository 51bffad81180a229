// Package preview renders bounded-size thumbnails for UI display. Previews
// are letterboxed onto a fixed square canvas; the final export never goes
// through this path.
package preview

import (
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/aliskhannn/media-exporter/internal/geometry"
	"github.com/aliskhannn/media-exporter/internal/model"
)

// CanvasSide is the width and height of the square preview canvas.
const CanvasSide = 240

// ErrEmptyRegion is returned when the preview region covers no pixels.
var ErrEmptyRegion = errors.New("preview region has zero area")

var background = color.White

// Compose renders a preview of how the export will look. The crop region
// (or, when crop is nil, the centered-cover region for the target size) is
// scaled to fit the canvas and centered on a solid background, so the
// region's own aspect ratio is preserved instead of being distorted to the
// canvas shape.
func Compose(img image.Image, crop *model.CropRect, target model.TargetSize) (image.Image, error) {
	rect := model.CropRect{}
	if crop != nil {
		rect = *crop
	} else {
		rect = geometry.CenteredCover(img.Bounds().Dx(), img.Bounds().Dy(), target)
	}

	region := imaging.Crop(img, rect.Rect())
	if region.Bounds().Dx() == 0 || region.Bounds().Dy() == 0 {
		return nil, ErrEmptyRegion
	}

	fitted := imaging.Fit(region, CanvasSide, CanvasSide, imaging.Lanczos)

	dc := gg.NewContext(CanvasSide, CanvasSide)
	dc.SetColor(background)
	dc.Clear()
	dc.DrawImageAnchored(fitted, CanvasSide/2, CanvasSide/2, 0.5, 0.5)

	return dc.Image(), nil
}
