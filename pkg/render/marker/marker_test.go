package marker

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mapcustomizer/mapcustomizer/pkg/fonts"
	pkgio "github.com/mapcustomizer/mapcustomizer/pkg/io"
	"github.com/mapcustomizer/mapcustomizer/pkg/render/text"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

func baseStyle() style.Config {
	cfg := style.DefaultMarkers()
	cfg.FontPath = ""
	cfg.IconPath = ""
	cfg.CircleRadius = 20
	return cfg
}

func whiteImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func writeIcon(t *testing.T) string {
	t.Helper()
	icon := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range icon.Pix {
		icon.Pix[i] = 0xff
	}
	path := filepath.Join(t.TempDir(), "radar.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, icon); err != nil {
		t.Fatal(err)
	}
	return path
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func render(t *testing.T, dst *image.NRGBA, recs []pkgio.MarkerRecord, cfg style.Config, opts ...Option) {
	t.Helper()
	if err := New(pkgio.MarkerList(recs), cfg, opts...).Render(context.Background(), dst); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestDiscBlendsOverBase(t *testing.T) {
	cfg := baseStyle()
	cfg.ShowCaption = false
	dst := whiteImage(100, 100)
	render(t, dst, []pkgio.MarkerRecord{{Name: "c", X: 50, Y: 50}}, cfg)

	// (255,0,0,50) over white: red stays, green and blue drop to 205.
	got := dst.NRGBAAt(50, 50)
	if got.R != 255 || !near(got.G, 205, 2) || !near(got.B, 205, 2) || got.A != 255 {
		t.Errorf("center = %v, want about {255 205 205 255}", got)
	}
	if got := dst.NRGBAAt(50+25, 50); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("outside disc = %v, want untouched white", got)
	}
	if got := dst.NRGBAAt(50-20, 50-20); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("bounding box corner = %v, want untouched white", got)
	}
}

func TestDiscOnTransparentBase(t *testing.T) {
	cfg := baseStyle()
	dst := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	render(t, dst, []pkgio.MarkerRecord{{Name: "c", X: 50, Y: 50}}, cfg)
	if got := dst.NRGBAAt(50, 50); !near(got.A, 50, 1) {
		t.Errorf("center alpha = %d, want 50", got.A)
	}
}

func TestDiscClipsAtEdges(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 30, 30))
	render(t, dst, []pkgio.MarkerRecord{{Name: "edge", X: 0, Y: 0}, {Name: "out", X: -500, Y: 900}}, baseStyle())
	if dst.NRGBAAt(0, 0).A == 0 {
		t.Error("disc at the corner drew nothing")
	}
}

func TestIconIsTintedAndCentered(t *testing.T) {
	cfg := baseStyle()
	cfg.IconPath = writeIcon(t)
	cfg.CircleColor = style.RGBA(0, 0, 0, 0)
	cfg.IconTint = style.RGB(0, 0, 255)
	cfg.ShowCaption = false
	dst := whiteImage(100, 100)
	render(t, dst, []pkgio.MarkerRecord{{Name: "c", X: 50, Y: 50}}, cfg)

	// radius 20 -> 10px icon pasted at (45, 45).
	for _, p := range []image.Point{{45, 45}, {50, 50}, {54, 54}} {
		if got := dst.NRGBAAt(p.X, p.Y); got != (color.NRGBA{0, 0, 255, 255}) {
			t.Errorf("icon pixel %v = %v, want blue", p, got)
		}
	}
	for _, p := range []image.Point{{44, 50}, {55, 50}, {50, 55}} {
		if got := dst.NRGBAAt(p.X, p.Y); got != (color.NRGBA{255, 255, 255, 255}) {
			t.Errorf("pixel %v outside icon = %v, want white", p, got)
		}
	}
}

func TestMissingIconWarnsOnce(t *testing.T) {
	cfg := baseStyle()
	cfg.IconPath = filepath.Join(t.TempDir(), "radar.png")
	var logs bytes.Buffer
	recs := []pkgio.MarkerRecord{{Name: "a", X: 10, Y: 10}, {Name: "b", X: 40, Y: 40}, {Name: "c", X: 70, Y: 70}}
	dst := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	render(t, dst, recs, cfg, WithLogger(log.New(&logs)))

	if n := strings.Count(logs.String(), "without icons"); n != 1 {
		t.Errorf("warning logged %d times, want 1:\n%s", n, logs.String())
	}
	for _, r := range recs {
		if dst.NRGBAAt(r.X, r.Y).A == 0 {
			t.Errorf("disc for %s missing", r.Name)
		}
	}
}

func TestEmptySpeedHasNoCaption(t *testing.T) {
	cfg := baseStyle()
	recs := []pkgio.MarkerRecord{{Name: "c", X: 50, Y: 50}}

	with := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	render(t, with, recs, cfg)

	cfg.ShowCaption = false
	without := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	render(t, without, recs, cfg)

	if !bytes.Equal(with.Pix, without.Pix) {
		t.Error("empty speed drew a caption")
	}
}

func TestCaptionBelowIcon(t *testing.T) {
	cfg := baseStyle()
	cfg.CircleColor = style.RGBA(0, 0, 0, 0)
	dst := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	rec := pkgio.MarkerRecord{Name: "c", X: 100, Y: 100, Speed: "50 km/h"}
	render(t, dst, []pkgio.MarkerRecord{rec}, cfg)

	face, err := fonts.Fallback(cfg.FontSize)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()
	left, top := CaptionOrigin(face, rec, cfg.IconSize())
	if top <= 100 {
		t.Errorf("caption top %v should be below the anchor", top)
	}

	var ink image.Rectangle
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if dst.NRGBAAt(x, y).A != 0 {
				ink = ink.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	if ink.Empty() {
		t.Fatal("caption drew nothing")
	}
	if ink.Min.Y < int(top) || float64(ink.Min.X) < left-2 {
		t.Errorf("ink %v starts before caption origin (%.1f, %.1f)", ink, left, top)
	}
	if mid := (ink.Min.X + ink.Max.X) / 2; mid < 97 || mid > 103 {
		t.Errorf("caption ink midpoint %d, want about 100", mid)
	}
}

func TestCaptionOriginFormula(t *testing.T) {
	face, err := fonts.Fallback(14)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()
	rec := pkgio.MarkerRecord{X: 200, Y: 300, Speed: "90"}
	_, top := CaptionOrigin(face, rec, 30)
	_, h := text.InkBounds(face, "90")
	want := 300 + 15 - h + 10
	if top != want {
		t.Errorf("top = %v, want %v", top, want)
	}
}

func TestDiscFootprint(t *testing.T) {
	d := Disc(5, style.RGB(0, 0, 0))
	if d.Bounds().Dx() != 11 || d.Bounds().Dy() != 11 {
		t.Errorf("disc bounds = %v", d.Bounds())
	}
}
