package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a non-premultiplied RGBA color that reads and writes as a hex
// string ("#rrggbb" or "#rrggbbaa") in TOML, JSON and command-line flags.
type Color struct {
	color.NRGBA
}

// RGB returns an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color{color.NRGBA{R: r, G: g, B: b, A: 0xff}}
}

// RGBA returns a Color with straight (non-premultiplied) alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{color.NRGBA{R: r, G: g, B: b, A: a}}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var alpha uint8 = 0xff
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb or #rrggbbaa", s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGBA(r, g, b, alpha), nil
}

// Opaque returns c with alpha forced to 255. Text and icon tints ignore the
// alpha channel.
func (c Color) Opaque() Color {
	c.A = 0xff
	return c
}

// String formats c as "#rrggbb", or "#rrggbbaa" when not fully opaque.
func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Set implements pflag.Value so colors can be bound directly to flags.
func (c *Color) Set(s string) error {
	return c.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (c *Color) Type() string {
	return "color"
}
