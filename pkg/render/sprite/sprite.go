// Package sprite prepares marker icons: loading, high-quality resizing and
// recoloring a single white or greyscale asset into any tint.
package sprite

import (
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/disintegration/imaging"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

// Load decodes the icon at path. A missing file is reported as
// RESOURCE_MISSING so the marker pass can continue without icons.
func Load(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResourceMissing, err, "icon %s", path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResourceMissing, err, "decode icon %s", path)
	}
	return img, nil
}

// Resize scales src to a size x size square with a Lanczos filter.
func Resize(src image.Image, size int) *image.NRGBA {
	return imaging.Resize(src, size, size, imaging.Lanczos)
}

// Recolor returns a copy of src with every pixel's color replaced by tint
// and its alpha kept. The alpha of tint is ignored.
func Recolor(src image.Image, tint color.Color) *image.NRGBA {
	t := color.NRGBAModel.Convert(tint).(color.NRGBA)
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA).A
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = t.R
			dst.Pix[i+1] = t.G
			dst.Pix[i+2] = t.B
			dst.Pix[i+3] = a
		}
	}
	return dst
}

// Prepare resizes and recolors an icon in one step.
func Prepare(src image.Image, size int, tint color.Color) *image.NRGBA {
	return Recolor(Resize(src, size), tint)
}

// PasteCentered composites icon over dst centered on (x, y). The icon's own
// alpha is the paste mask: fully transparent icon pixels leave dst untouched.
func PasteCentered(dst draw.Image, icon image.Image, x, y int) {
	b := icon.Bounds()
	at := image.Pt(x-b.Dx()/2, y-b.Dy()/2)
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, icon, b.Min, draw.Over)
}
