// Package subject derives crop rectangles centered on a detected human
// subject, using keypoints from an injected pose-estimation capability.
package subject

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-exporter/internal/model"
)

// Keypoint names consumed by the frame estimator. Anything else a capability
// returns is ignored.
const (
	KeypointNose          = "nose"
	KeypointLeftShoulder  = "left_shoulder"
	KeypointRightShoulder = "right_shoulder"
)

// Candidate is one detected pose: a set of named keypoints with an overall
// detection score.
type Candidate struct {
	Score     float64          `json:"score"`
	Keypoints []model.Keypoint `json:"keypoints"`
}

// Keypoint returns the named keypoint of the candidate, if present.
func (c Candidate) Keypoint(name string) (model.Keypoint, bool) {
	for _, kp := range c.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return model.Keypoint{}, false
}

// PoseEstimator is the external pose-detection capability. Implementations
// may hold per-call state; Reset must bring the estimator back to a clean
// state and is called before every EstimatePose so no state leaks between
// images. A single instance is not safe for concurrent use.
type PoseEstimator interface {
	EstimatePose(ctx context.Context, img image.Image) ([]Candidate, error)
	Reset()
}

// Vertical split of the crop: the anchor sits at 55% from the top, leaving
// headroom above the face and body below.
const (
	headroomShare = 0.55
	bodyShare     = 0.45
)

// FrameEstimator computes subject-centered crop rectangles. It serializes
// access to the underlying capability, so one instance may be shared by
// concurrent pipeline workers.
type FrameEstimator struct {
	mu   sync.Mutex
	pose PoseEstimator
}

// NewFrameEstimator wraps the given pose capability. A nil capability is
// allowed; Estimate then always reports no frame.
func NewFrameEstimator(pose PoseEstimator) *FrameEstimator {
	return &FrameEstimator{pose: pose}
}

// Estimate derives a crop rectangle of the given aspect ratio centered on
// the subject's shoulders and face. It returns ok=false whenever a frame
// cannot be derived: no capability, detection error, or missing keypoints.
// Framing is a best-effort enhancement, so failures are logged and swallowed
// rather than returned.
func (e *FrameEstimator) Estimate(ctx context.Context, img image.Image, targetAspect float64) (model.CropRect, bool) {
	if e.pose == nil || targetAspect <= 0 {
		return model.CropRect{}, false
	}

	e.mu.Lock()
	e.pose.Reset()
	candidates, err := e.pose.EstimatePose(ctx, img)
	e.mu.Unlock()
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("pose estimation failed, falling back to centered crop")
		return model.CropRect{}, false
	}
	if len(candidates) == 0 {
		return model.CropRect{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	nose, okN := best.Keypoint(KeypointNose)
	left, okL := best.Keypoint(KeypointLeftShoulder)
	right, okR := best.Keypoint(KeypointRightShoulder)
	if !okN || !okL || !okR {
		return model.CropRect{}, false
	}
	if !validPoint(nose) || !validPoint(left) || !validPoint(right) {
		return model.CropRect{}, false
	}

	width := float64(img.Bounds().Dx())
	height := float64(img.Bounds().Dy())

	// Horizontal anchor between the shoulders; vertical anchor blended
	// between the nose and the shoulder line.
	anchorX := (left.X + right.X) / 2
	anchorY := 0.5*nose.Y + 0.5*(left.Y+right.Y)/2
	if anchorX <= 0 || anchorX >= width || anchorY <= 0 || anchorY >= height {
		return model.CropRect{}, false
	}

	// Largest crop that keeps the anchor centered horizontally and splits
	// the height headroomShare above / bodyShare below the anchor.
	maxWidth := 2 * math.Min(anchorX, width-anchorX)
	maxHeight := math.Min(anchorY/headroomShare, (height-anchorY)/bodyShare)

	var cropWidth, cropHeight float64
	if maxWidth/targetAspect <= maxHeight {
		// Width bound is limiting.
		cropWidth = maxWidth
		cropHeight = maxWidth / targetAspect
	} else {
		cropHeight = maxHeight
		cropWidth = maxHeight * targetAspect
	}
	if cropWidth <= 0 || cropHeight <= 0 {
		return model.CropRect{}, false
	}

	rect := model.CropRect{
		X:      anchorX - cropWidth/2,
		Y:      anchorY - headroomShare*cropHeight,
		Width:  cropWidth,
		Height: cropHeight,
	}

	rect.X = clamp(rect.X, 0, width-cropWidth)
	rect.Y = clamp(rect.Y, 0, height-cropHeight)

	return rect, true
}

func validPoint(kp model.Keypoint) bool {
	return !math.IsNaN(kp.X) && !math.IsNaN(kp.Y) &&
		!math.IsInf(kp.X, 0) && !math.IsInf(kp.Y, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
