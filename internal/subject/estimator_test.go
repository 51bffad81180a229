package subject

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/aliskhannn/media-exporter/internal/model"
)

// fakePose returns canned candidates and records Reset calls.
type fakePose struct {
	candidates []Candidate
	err        error
	resets     int
	calls      int
}

func (f *fakePose) EstimatePose(_ context.Context, _ image.Image) ([]Candidate, error) {
	f.calls++
	return f.candidates, f.err
}

func (f *fakePose) Reset() { f.resets++ }

func kp(name string, x, y float64) model.Keypoint {
	return model.Keypoint{Name: name, X: x, Y: y, Confidence: 0.9}
}

func fullCandidate(score float64) Candidate {
	return Candidate{
		Score: score,
		Keypoints: []model.Keypoint{
			kp(KeypointNose, 150, 100),
			kp(KeypointLeftShoulder, 100, 150),
			kp(KeypointRightShoulder, 200, 150),
		},
	}
}

func TestEstimateShoulderFrame(t *testing.T) {
	pose := &fakePose{candidates: []Candidate{fullCandidate(0.9)}}
	estimator := NewFrameEstimator(pose)

	img := image.NewRGBA(image.Rect(0, 0, 300, 500))
	aspect := 150.0 / 174.0

	rect, ok := estimator.Estimate(context.Background(), img, aspect)
	if !ok {
		t.Fatal("expected a subject frame")
	}

	// Anchor: x = (100+200)/2 = 150, y = 0.5*100 + 0.5*150 = 125.
	// Width bound: 2*min(150, 150) = 300. Height bound:
	// min(125/0.55, 375/0.45) = 227.27..., which limits the crop.
	if got := rect.AspectRatio(); math.Abs(got-aspect) > 1e-9 {
		t.Errorf("aspect ratio = %v, want exactly %v", got, aspect)
	}
	if !rect.In(300, 500) {
		t.Errorf("crop %+v exits the source image", rect)
	}

	wantHeight := 125.0 / 0.55
	if math.Abs(rect.Height-wantHeight) > 1e-6 {
		t.Errorf("crop height = %v, want %v", rect.Height, wantHeight)
	}

	// Horizontally centered on the shoulder midpoint.
	center := rect.X + rect.Width/2
	if math.Abs(center-150) > 1e-6 {
		t.Errorf("horizontal center = %v, want 150", center)
	}

	if pose.resets != 1 {
		t.Errorf("capability reset %d times, want 1", pose.resets)
	}
}

func TestEstimatePicksHighestScore(t *testing.T) {
	offCenter := Candidate{
		Score: 0.4,
		Keypoints: []model.Keypoint{
			kp(KeypointNose, 50, 100),
			kp(KeypointLeftShoulder, 30, 150),
			kp(KeypointRightShoulder, 70, 150),
		},
	}
	pose := &fakePose{candidates: []Candidate{offCenter, fullCandidate(0.8)}}
	estimator := NewFrameEstimator(pose)

	img := image.NewRGBA(image.Rect(0, 0, 300, 500))
	rect, ok := estimator.Estimate(context.Background(), img, 1.0)
	if !ok {
		t.Fatal("expected a subject frame")
	}

	center := rect.X + rect.Width/2
	if math.Abs(center-150) > 1e-6 {
		t.Errorf("frame built from low-score candidate, center = %v", center)
	}
}

func TestEstimateNoFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 500))

	tests := []struct {
		name string
		pose *fakePose
	}{
		{"capability error", &fakePose{err: errors.New("model not loaded")}},
		{"no candidates", &fakePose{}},
		{"missing shoulder", &fakePose{candidates: []Candidate{{
			Score: 0.9,
			Keypoints: []model.Keypoint{
				kp(KeypointNose, 150, 100),
				kp(KeypointLeftShoulder, 100, 150),
			},
		}}}},
		{"malformed keypoint", &fakePose{candidates: []Candidate{{
			Score: 0.9,
			Keypoints: []model.Keypoint{
				kp(KeypointNose, math.NaN(), 100),
				kp(KeypointLeftShoulder, 100, 150),
				kp(KeypointRightShoulder, 200, 150),
			},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimator := NewFrameEstimator(tt.pose)
			if _, ok := estimator.Estimate(context.Background(), img, 1.0); ok {
				t.Error("expected no frame")
			}
		})
	}
}

func TestEstimateNilCapability(t *testing.T) {
	estimator := NewFrameEstimator(nil)
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	if _, ok := estimator.Estimate(context.Background(), img, 1.0); ok {
		t.Error("nil capability must yield no frame")
	}
}

func TestEstimateClampsToImage(t *testing.T) {
	// Subject close to the top edge: the headroom split would push the
	// rectangle above y=0 before clamping.
	pose := &fakePose{candidates: []Candidate{{
		Score: 0.9,
		Keypoints: []model.Keypoint{
			kp(KeypointNose, 150, 10),
			kp(KeypointLeftShoulder, 100, 30),
			kp(KeypointRightShoulder, 200, 30),
		},
	}}}
	estimator := NewFrameEstimator(pose)

	img := image.NewRGBA(image.Rect(0, 0, 300, 400))
	rect, ok := estimator.Estimate(context.Background(), img, 0.75)
	if !ok {
		t.Fatal("expected a subject frame")
	}
	if !rect.In(300, 400) {
		t.Errorf("crop %+v exits the source image", rect)
	}
}
