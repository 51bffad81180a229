// Package decode is the format front-door for uploaded images. JPEG, PNG
// and WebP are decoded in-process; HEIC is delegated to an external decoder
// collaborator so its absence only blocks HEIC assets.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// MaxFileSize is the per-file boundary limit for uploaded sources.
const MaxFileSize = 10 << 20 // 10 MB

var (
	// ErrHEICUnavailable is returned for HEIC files when no external HEIC
	// decoder was provided.
	ErrHEICUnavailable = errors.New("heic decoding capability is not available")

	// ErrFileTooLarge is returned when a source exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("source file exceeds the 10 MB limit")
)

// HEICDecoder converts a HEIC container into a standard raster. It is an
// external capability; the engine never decodes HEIC itself.
type HEICDecoder interface {
	Decode(r io.Reader) (image.Image, error)
}

// Decoder decodes uploaded files into rasters.
type Decoder struct {
	heic HEICDecoder
}

// New creates a decoder. heic may be nil; HEIC files then fail with
// ErrHEICUnavailable while all other formats keep working.
func New(heic HEICDecoder) *Decoder {
	return &Decoder{heic: heic}
}

// Decode turns raw file bytes into an image, choosing the decoder by the
// file name extension.
func (d *Decoder) Decode(filename string, data []byte) (image.Image, error) {
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".heic", ".heif":
		if d.heic == nil {
			return nil, ErrHEICUnavailable
		}
		img, err := d.heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("heic decode failed: %w", err)
		}
		return img, nil

	case ".webp":
		if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
		// Some encoders produce containers chai2010 rejects; the x/image
		// decoder registered with image.Decode handles those.
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("webp decode failed: %w", err)
		}
		return img, nil

	default:
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		return img, nil
	}
}
