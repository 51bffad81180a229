package decode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
)

func encodedImage(t *testing.T, format imaging.Format) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 10), 50, 255})
		}
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, format); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeStandardFormats(t *testing.T) {
	d := New(nil)

	tests := []struct {
		filename string
		format   imaging.Format
	}{
		{"photo.jpg", imaging.JPEG},
		{"logo.png", imaging.PNG},
	}

	for _, tt := range tests {
		img, err := d.Decode(tt.filename, encodedImage(t, tt.format))
		if err != nil {
			t.Errorf("Decode(%s): %v", tt.filename, err)
			continue
		}
		if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
			t.Errorf("Decode(%s) = %dx%d, want 32x24",
				tt.filename, img.Bounds().Dx(), img.Bounds().Dy())
		}
	}
}

type fakeHEIC struct{}

func (fakeHEIC) Decode(_ io.Reader) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 16, 16)), nil
}

func TestDecodeHEIC(t *testing.T) {
	// Without the capability, HEIC assets are blocked; everything else
	// keeps working.
	d := New(nil)
	if _, err := d.Decode("IMG_100.HEIC", []byte("not a real heic")); !errors.Is(err, ErrHEICUnavailable) {
		t.Errorf("err = %v, want ErrHEICUnavailable", err)
	}

	d = New(fakeHEIC{})
	img, err := d.Decode("IMG_100.heic", []byte("payload handed to the collaborator"))
	if err != nil {
		t.Fatalf("Decode with capability: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("unexpected raster %v", img.Bounds())
	}
}

func TestDecodeRejectsOversizedFile(t *testing.T) {
	d := New(nil)

	if _, err := d.Decode("big.jpg", make([]byte, MaxFileSize+1)); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestDecodeCorruptData(t *testing.T) {
	d := New(nil)

	if _, err := d.Decode("broken.jpg", []byte{0x00, 0x01, 0x02}); err == nil {
		t.Error("expected an error for corrupt data")
	}
}
