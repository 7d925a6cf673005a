package text

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Width returns the advance width of s in pixels.
func Width(face font.Face, s string) float64 {
	return fromFixed(font.MeasureString(face, s))
}

// InkBounds returns the width and height in pixels of the area the glyphs
// of s actually cover.
func InkBounds(face font.Face, s string) (w, h float64) {
	b, _ := font.BoundString(face, s)
	return fromFixed(b.Max.X - b.Min.X), fromFixed(b.Max.Y - b.Min.Y)
}

// Ascent returns the distance in pixels from the top of a line box to the
// baseline.
func Ascent(face font.Face) float64 {
	return fromFixed(face.Metrics().Ascent)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
