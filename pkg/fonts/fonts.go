// Package fonts resolves font files into [font.Face] values for overlay
// text.
//
// Resolution order for a configured font path:
//  1. the path itself, when it names a readable file
//  2. a system font lookup by file or family name (go-findfont)
//  3. the built-in fallback, Go Bold, embedded via golang.org/x/image
//
// A missing or unparsable font never stops a render: [Loader.Face] always
// returns a usable face and reports the degradation as a RESOURCE_MISSING
// error next to it.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// FallbackName identifies the built-in face in logs.
const FallbackName = "Go Bold (built-in)"

var (
	fallbackOnce sync.Once
	fallbackFont *opentype.Font
	fallbackErr  error
)

// fallback parses the embedded Go Bold font once.
func fallback() (*opentype.Font, error) {
	fallbackOnce.Do(func() {
		fallbackFont, fallbackErr = opentype.Parse(gobold.TTF)
	})
	return fallbackFont, fallbackErr
}

// Fallback returns the built-in face at size pixels.
func Fallback(size float64) (font.Face, error) {
	f, err := fallback()
	if err != nil {
		return nil, err
	}
	return newFace(f, size)
}

// newFace creates an unhinted face. Sizes are pixels: DPI is fixed at 72 so
// one point equals one pixel, matching how map styles specify font sizes.
func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
