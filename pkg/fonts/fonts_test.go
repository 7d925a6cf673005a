package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

func writeFont(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "GoRegular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFallback(t *testing.T) {
	face, err := Fallback(18)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if w := font.MeasureString(face, "North"); w <= 0 {
		t.Errorf("fallback face should measure text, got %v", w)
	}
	if h := face.Metrics().Height.Ceil(); h < 18 {
		t.Errorf("18px face should be at least 18px tall, got %d", h)
	}
}

func TestLoaderFaceFromFile(t *testing.T) {
	path := writeFont(t)
	face, err := NewLoader().Face(path, 14)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	fb, _ := Fallback(14)
	if font.MeasureString(face, "District") == font.MeasureString(fb, "District") {
		t.Error("regular face should differ from the bold fallback")
	}
}

func TestLoaderMissingFontFallsBack(t *testing.T) {
	face, err := NewLoader().Face(filepath.Join(t.TempDir(), "nope-does-not-exist-xyz.ttf"), 18)
	if face == nil {
		t.Fatal("expected fallback face")
	}
	if !errors.Is(err, errors.ErrCodeResourceMissing) {
		t.Errorf("expected RESOURCE_MISSING, got %v", err)
	}
}

func TestLoaderCorruptFontFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	face, err := NewLoader().Face(path, 18)
	if face == nil {
		t.Fatal("expected fallback face")
	}
	if !errors.Is(err, errors.ErrCodeResourceMissing) {
		t.Errorf("expected RESOURCE_MISSING, got %v", err)
	}
}

func TestLoaderEmptyPathUsesFallbackSilently(t *testing.T) {
	face, err := NewLoader().Face("", 12)
	if err != nil || face == nil {
		t.Fatalf("Face(\"\") = %v, %v", face, err)
	}
}

func TestLoaderRejectsBadSize(t *testing.T) {
	if _, err := NewLoader().Face("", 0); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestCachingLoader(t *testing.T) {
	path := writeFont(t)
	l := NewCachingLoader()
	for _, size := range []float64{12, 18, 24} {
		if _, err := l.Face(path, size); err != nil {
			t.Fatalf("Face(%g): %v", size, err)
		}
	}
	if got := l.Cached(); got != 1 {
		t.Errorf("Cached() = %d, want 1", got)
	}

	if got := NewLoader().Cached(); got != 0 {
		t.Errorf("non-caching loader Cached() = %d, want 0", got)
	}
}
