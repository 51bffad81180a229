package geometry

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/aliskhannn/media-exporter/internal/model"
	"github.com/aliskhannn/media-exporter/internal/subject"
)

type fakePose struct {
	candidates []subject.Candidate
	err        error
}

func (f *fakePose) EstimatePose(_ context.Context, _ image.Image) ([]subject.Candidate, error) {
	return f.candidates, f.err
}

func (f *fakePose) Reset() {}

func workingPose() *fakePose {
	return &fakePose{candidates: []subject.Candidate{{
		Score: 0.9,
		Keypoints: []model.Keypoint{
			{Name: subject.KeypointNose, X: 150, Y: 100, Confidence: 0.9},
			{Name: subject.KeypointLeftShoulder, X: 100, Y: 150, Confidence: 0.9},
			{Name: subject.KeypointRightShoulder, X: 200, Y: 150, Confidence: 0.9},
		},
	}}}
}

func TestCenteredCoverProperties(t *testing.T) {
	tests := []struct {
		srcW, srcH int
		target     model.TargetSize
	}{
		{4000, 3000, model.TargetSize{Width: 660, Height: 440}},
		{4000, 3000, model.TargetSize{Width: 150, Height: 174}},
		{1080, 1920, model.TargetSize{Width: 330, Height: 220}},
		{500, 500, model.TargetSize{Width: 900, Height: 600}},
		{101, 97, model.TargetSize{Width: 400, Height: 400}},
		{640, 480, model.TargetSize{Width: 640, Height: 480}},
	}

	for _, tt := range tests {
		rect := CenteredCover(tt.srcW, tt.srcH, tt.target)

		if got, want := rect.AspectRatio(), tt.target.AspectRatio(); math.Abs(got-want) > 1e-3 {
			t.Errorf("CenteredCover(%dx%d -> %dx%d) aspect = %v, want %v",
				tt.srcW, tt.srcH, tt.target.Width, tt.target.Height, got, want)
		}
		if !rect.In(tt.srcW, tt.srcH) {
			t.Errorf("CenteredCover(%dx%d -> %dx%d) = %+v exits the source",
				tt.srcW, tt.srcH, tt.target.Width, tt.target.Height, rect)
		}

		// Centered: equal margins on the trimmed axis.
		dx := rect.X - (float64(tt.srcW) - rect.X - rect.Width)
		dy := rect.Y - (float64(tt.srcH) - rect.Y - rect.Height)
		if math.Abs(dx) > 1e-6 || math.Abs(dy) > 1e-6 {
			t.Errorf("CenteredCover(%dx%d -> %dx%d) not centered: %+v",
				tt.srcW, tt.srcH, tt.target.Width, tt.target.Height, rect)
		}
	}
}

func TestResolveManualCropWins(t *testing.T) {
	// Manual crop takes precedence even for staff with a working capability.
	solver := NewSolver(subject.NewFrameEstimator(workingPose()))
	img := image.NewRGBA(image.Rect(0, 0, 300, 500))
	manual := &model.CropRect{X: 10, Y: 20, Width: 150, Height: 174}

	got := solver.Resolve(context.Background(), img, model.CategoryStaff,
		model.TargetSize{Width: 150, Height: 174}, manual)

	if got != *manual {
		t.Errorf("Resolve = %+v, want manual crop %+v", got, *manual)
	}
}

func TestResolveStaffUsesSubjectFrame(t *testing.T) {
	solver := NewSolver(subject.NewFrameEstimator(workingPose()))
	img := image.NewRGBA(image.Rect(0, 0, 300, 500))
	target := model.TargetSize{Width: 150, Height: 174}

	got := solver.Resolve(context.Background(), img, model.CategoryStaff, target, nil)
	centered := CenteredCover(300, 500, target)

	if got == centered {
		t.Error("staff crop equals centered fallback, pose estimate was ignored")
	}
	if math.Abs(got.AspectRatio()-target.AspectRatio()) > 1e-9 {
		t.Errorf("aspect = %v, want %v", got.AspectRatio(), target.AspectRatio())
	}
	if !got.In(300, 500) {
		t.Errorf("crop %+v exits the source image", got)
	}
}

func TestResolveFallsBackOnPoseFailure(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 500))
	target := model.TargetSize{Width: 150, Height: 174}
	centered := CenteredCover(300, 500, target)

	tests := []struct {
		name   string
		solver *Solver
	}{
		{"capability error", NewSolver(subject.NewFrameEstimator(&fakePose{err: errors.New("detector crashed")}))},
		{"no keypoints", NewSolver(subject.NewFrameEstimator(&fakePose{}))},
		{"no capability", NewSolver(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.solver.Resolve(context.Background(), img, model.CategoryStaff, target, nil)
			if got != centered {
				t.Errorf("Resolve = %+v, want centered fallback %+v", got, centered)
			}
		})
	}
}

func TestResolveNonStaffIgnoresPose(t *testing.T) {
	solver := NewSolver(subject.NewFrameEstimator(workingPose()))
	img := image.NewRGBA(image.Rect(0, 0, 300, 500))
	target := model.TargetSize{Width: 330, Height: 220}
	centered := CenteredCover(300, 500, target)

	for _, category := range []model.Category{model.CategoryPhoto, model.CategoryLogo} {
		got := solver.Resolve(context.Background(), img, category, target, nil)
		if got != centered {
			t.Errorf("Resolve(%s) = %+v, want centered %+v", category, got, centered)
		}
	}
}
