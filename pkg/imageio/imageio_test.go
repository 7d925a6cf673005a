package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(2, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	return img
}

func TestSaveLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "map.png")
	if err := Save(path, testImage()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	r, g, b, _ := img.At(2, 3).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want imaging.Format
		ok   bool
	}{
		{"a.png", imaging.PNG, true},
		{"a.JPG", imaging.JPEG, true},
		{"a.jpeg", imaging.JPEG, true},
		{"a.bmp", imaging.BMP, true},
		{"a.tiff", imaging.TIFF, true},
		{"a.gif", imaging.GIF, true},
		{"a.webp", 0, false},
		{"noext", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("FormatFor(%q) = %v, %v", tt.path, got, err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("FormatFor(%q) err = %v, want INVALID_FORMAT", tt.path, err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeIOFailure) {
		t.Errorf("missing file err = %v", err)
	}
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, errors.ErrCodeIOFailure) {
		t.Errorf("corrupt file err = %v", err)
	}
}

func TestEncodeBytesPNG(t *testing.T) {
	data, err := EncodeBytes(testImage(), "x.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output is not PNG: %v", err)
	}
}
