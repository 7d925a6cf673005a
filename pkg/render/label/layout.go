// Package label draws district names centered on their anchor points.
//
// A name is greedily wrapped to the configured character width, the wrapped
// block is centered vertically and every line centered horizontally on the
// anchor, and each line is drawn outlined.
package label

import (
	"math"

	"golang.org/x/image/font"

	pkgio "github.com/mapcustomizer/mapcustomizer/pkg/io"
	"github.com/mapcustomizer/mapcustomizer/pkg/render/text"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

// Line is one positioned line of a wrapped label. (X, Y) is the top-left of
// the line box as expected by [text.DrawStroked].
type Line struct {
	Text  string
	X, Y  float64
	Width float64
}

// Layout wraps rec.Name and positions its lines around (rec.X, rec.Y).
//
// Lines are cfg.FontSize + [style.LineSpacing] apart. The block of n lines is
// n times that tall and its top sits half a block (rounded down) above the
// anchor. Each line is centered by its advance width.
func Layout(rec pkgio.LabelRecord, face font.Face, cfg style.Config) []Line {
	words := text.Wrap(rec.Name, cfg.WrapWidth)
	if len(words) == 0 {
		return nil
	}

	step := cfg.FontSize + style.LineSpacing
	blockHeight := float64(len(words)) * step
	top := float64(rec.Y) - math.Floor(blockHeight/2)

	lines := make([]Line, len(words))
	for i, s := range words {
		w := text.Width(face, s)
		lines[i] = Line{
			Text:  s,
			X:     float64(rec.X) - w/2,
			Y:     top + float64(i)*step,
			Width: w,
		}
	}
	return lines
}
