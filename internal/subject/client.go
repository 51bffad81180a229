package subject

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
)

// HTTPEstimator talks to a keypoint-detection service over HTTP. The service
// receives a JPEG body on POST {base}/v1/pose and answers with a JSON list
// of pose candidates. Each request is independent, so Reset is a no-op.
type HTTPEstimator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEstimator validates the service URL and returns a client for it.
func NewHTTPEstimator(serviceURL string) (*HTTPEstimator, error) {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pose service URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported pose service scheme: %s", parsed.Scheme)
	}

	return &HTTPEstimator{
		baseURL: serviceURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type poseResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// EstimatePose sends the image to the detection service and returns its
// pose candidates.
func (e *HTTPEstimator) EstimatePose(ctx context.Context, img image.Image) ([]Candidate, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("failed to encode image for pose detection: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/pose", buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create pose request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pose service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose service returned HTTP %d", resp.StatusCode)
	}

	var parsed poseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode pose response: %w", err)
	}

	return parsed.Candidates, nil
}

// Reset satisfies PoseEstimator. The HTTP client carries no cross-image
// state.
func (e *HTTPEstimator) Reset() {}
