package text

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Offsets returns the outline offsets for width w: every (dx, dy) with
// |dx| <= w and |dy| <= w except the origin, in row-major order. There are
// (2w+1)^2 - 1 of them; w <= 0 yields none.
func Offsets(w int) []image.Point {
	if w <= 0 {
		return nil
	}
	pts := make([]image.Point, 0, (2*w+1)*(2*w+1)-1)
	for dx := -w; dx <= w; dx++ {
		for dy := -w; dy <= w; dy++ {
			if dx != 0 || dy != 0 {
				pts = append(pts, image.Pt(dx, dy))
			}
		}
	}
	return pts
}

// Draw renders s in color c with the top-left of its line box at (px, py).
// The line box top is the ascender line, so the baseline sits at
// py + ascent.
func Draw(dst draw.Image, face font.Face, s string, px, py float64, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: toFixed(px),
			Y: toFixed(py) + face.Metrics().Ascent,
		},
	}
	d.DrawString(s)
}

// DrawStroked renders s outlined: one copy in outline color at every offset
// from [Offsets], then the fill copy at (px, py) on top. With width 0 only the
// fill copy is drawn.
func DrawStroked(dst draw.Image, face font.Face, s string, px, py float64, width int, outline, fill color.Color) {
	for _, o := range Offsets(width) {
		Draw(dst, face, s, px+float64(o.X), py+float64(o.Y), outline)
	}
	Draw(dst, face, s, px, py, fill)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
