// Package geometry resolves the source crop rectangle for an export:
// manual crop first, subject framing for staff portraits, centered-cover
// as the total fallback.
package geometry

import (
	"context"
	"image"

	"github.com/aliskhannn/media-exporter/internal/model"
	"github.com/aliskhannn/media-exporter/internal/subject"
)

// frameEstimator derives a subject-centered crop of a given aspect ratio.
type frameEstimator interface {
	Estimate(ctx context.Context, img image.Image, targetAspect float64) (model.CropRect, bool)
}

// Solver picks the crop rectangle for one (image, target) pair.
type Solver struct {
	frames frameEstimator
}

// NewSolver creates a solver. The frame estimator may be nil when no pose
// capability is available; staff images then fall back to centered crops.
func NewSolver(frames *subject.FrameEstimator) *Solver {
	if frames == nil {
		return &Solver{}
	}
	return &Solver{frames: frames}
}

// Resolve returns the source rectangle to extract. Precedence: a manual
// crop is authoritative; staff images try the subject frame; everything
// else (and every failure) gets the centered-cover rectangle. The result
// always has the target aspect ratio and lies inside the source image.
func (s *Solver) Resolve(ctx context.Context, img image.Image, category model.Category, target model.TargetSize, manual *model.CropRect) model.CropRect {
	if manual != nil {
		return *manual
	}

	if category == model.CategoryStaff && s.frames != nil {
		if rect, ok := s.frames.Estimate(ctx, img, target.AspectRatio()); ok {
			return rect
		}
	}

	return CenteredCover(img.Bounds().Dx(), img.Bounds().Dy(), target)
}

// CenteredCover computes the largest rectangle of the target aspect ratio
// centered in a srcWidth x srcHeight image, analogous to CSS "cover"
// fitting. It is total for positive dimensions.
func CenteredCover(srcWidth, srcHeight int, target model.TargetSize) model.CropRect {
	w := float64(srcWidth)
	h := float64(srcHeight)
	aspect := target.AspectRatio()

	if w/h > aspect {
		// Source is wider than the target: full height, trim the sides.
		cropWidth := h * aspect
		return model.CropRect{
			X:      (w - cropWidth) / 2,
			Y:      0,
			Width:  cropWidth,
			Height: h,
		}
	}

	// Source is taller (or equal): full width, trim top and bottom.
	cropHeight := w / aspect
	return model.CropRect{
		X:      0,
		Y:      (h - cropHeight) / 2,
		Width:  w,
		Height: cropHeight,
	}
}
