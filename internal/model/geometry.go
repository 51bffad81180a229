package model

import (
	"image"
	"math"
)

// TargetSize defines the exact output raster dimensions for an export and,
// implicitly, the required aspect ratio width/height.
type TargetSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AspectRatio returns width/height as a float.
func (s TargetSize) AspectRatio() float64 {
	return float64(s.Width) / float64(s.Height)
}

// CropRect is a source crop rectangle in source pixel coordinates. The
// fields are floats so a solver can hold the target aspect ratio exactly;
// rounding to whole pixels happens only when the region is extracted.
type CropRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AspectRatio returns width/height of the rectangle.
func (r CropRect) AspectRatio() float64 {
	return r.Width / r.Height
}

// Rect converts the crop rectangle to whole pixel coordinates.
func (r CropRect) Rect() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.Width))
	y1 := int(math.Round(r.Y + r.Height))
	return image.Rect(x0, y0, x1, y1)
}

// In reports whether the rectangle lies fully inside a source image of the
// given dimensions.
func (r CropRect) In(srcWidth, srcHeight int) bool {
	const eps = 1e-6
	return r.X >= -eps && r.Y >= -eps &&
		r.X+r.Width <= float64(srcWidth)+eps &&
		r.Y+r.Height <= float64(srcHeight)+eps
}

// Keypoint is a named 2-D point with a confidence score produced by the
// pose-estimation capability.
type Keypoint struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}
