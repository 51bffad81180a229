package model

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// Category is the semantic classification of an image. It drives both the
// target size lookup and the framing strategy during export.
type Category string

const (
	CategoryPhoto Category = "photo"
	CategoryStaff Category = "staff"
	CategoryLogo  Category = "logo"
)

// ImageAsset is a decoded source image together with the metadata the
// export pipeline needs. The pixel buffer is never mutated after decoding;
// every stage only reads from it.
type ImageAsset struct {
	ID         uuid.UUID
	Filename   string
	Image      image.Image
	Category   Category
	ManualCrop *CropRect // user-supplied crop, overrides any auto framing
}

// Width returns the source image width in pixels.
func (a ImageAsset) Width() int {
	return a.Image.Bounds().Dx()
}

// Height returns the source image height in pixels.
func (a ImageAsset) Height() int {
	return a.Image.Bounds().Dy()
}

// BatchAsset describes one uploaded file inside a persisted batch. The pixel
// data lives in object storage under Path; the struct itself travels through
// Kafka as part of an ExportJob.
type BatchAsset struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Category   Category  `json:"category"`
	ManualCrop *CropRect `json:"manual_crop,omitempty"`
}

// ExportJob is the message enqueued after a batch upload. The consumer picks
// it up and runs the export pipeline over the referenced assets.
type ExportJob struct {
	BatchID   uuid.UUID    `json:"batch_id"`
	Profile   string       `json:"profile"`
	Quality   float64      `json:"quality"`
	Assets    []BatchAsset `json:"assets"`
	CreatedAt time.Time    `json:"created_at"`
}
