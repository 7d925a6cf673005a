// Package style defines the per-pass style configuration for overlay
// rendering.
//
// A [Config] is a plain value: passes receive a copy and never share mutable
// style state. [DefaultLabels] and [DefaultMarkers] build the stock defaults
// for the district label pass and the speed camera marker pass.
package style

import (
	"math"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

const (
	// DefaultFontPath is the bundled font asset shipped next to the maps.
	DefaultFontPath = "resources/Fredoka-Bold.ttf"

	// DefaultIconPath is the marker sprite location.
	DefaultIconPath = "resources/radar.png"

	// LineSpacing is the fixed gap in pixels between wrapped label lines.
	LineSpacing = 4

	// MinIconSize is the smallest edge length a marker icon is scaled to.
	MinIconSize = 10

	// CaptionOffset shifts marker captions down relative to the icon.
	CaptionOffset = 10
)

// Config holds the style options of one render pass. Options that do not
// apply to a pass (WrapWidth for markers, circle options for labels) are
// ignored by it.
type Config struct {
	FontPath     string  `toml:"font_path" json:"font_path"`
	FontSize     float64 `toml:"font_size" json:"font_size"`
	WrapWidth    int     `toml:"wrap_width" json:"wrap_width"`
	OutlineWidth int     `toml:"outline_width" json:"outline_width"`
	TextColor    Color   `toml:"text_color" json:"text_color"`
	OutlineColor Color   `toml:"outline_color" json:"outline_color"`
	CircleRadius int     `toml:"circle_radius" json:"circle_radius"`
	CircleColor  Color   `toml:"circle_color" json:"circle_color"`
	IconPath     string  `toml:"icon" json:"icon"`
	IconTint     Color   `toml:"icon_tint" json:"icon_tint"`
	ShowCaption  bool    `toml:"show_caption" json:"show_caption"`
}

// DefaultLabels returns the default style of the label pass: 18px white
// text with a 1px black outline, wrapped at 8 characters.
func DefaultLabels() Config {
	return Config{
		FontPath:     DefaultFontPath,
		FontSize:     18,
		WrapWidth:    8,
		OutlineWidth: 1,
		TextColor:    RGB(255, 255, 255),
		OutlineColor: RGB(0, 0, 0),
	}
}

// DefaultMarkers returns the default style of the marker pass: a translucent
// red 60px disc, an orange icon and a 14px orange caption.
func DefaultMarkers() Config {
	return Config{
		FontPath:     DefaultFontPath,
		FontSize:     14,
		OutlineWidth: 1,
		TextColor:    RGB(254, 127, 0),
		OutlineColor: RGB(0, 0, 0),
		CircleRadius: 60,
		CircleColor:  RGBA(255, 0, 0, 50),
		IconPath:     DefaultIconPath,
		IconTint:     RGB(254, 127, 0),
		ShowCaption:  true,
	}
}

// IconSize returns the edge length marker icons are scaled to:
// round(radius/2), but never below [MinIconSize].
func (c Config) IconSize() int {
	return max(MinIconSize, int(math.Round(float64(c.CircleRadius)*0.5)))
}

// ValidateLabels checks label pass options against the ranges the style
// editor allows.
func (c Config) ValidateLabels() error {
	if err := errors.ValidateRange("font_size", c.FontSize, 6, 100); err != nil {
		return err
	}
	if err := errors.ValidateRange("wrap_width", c.WrapWidth, 5, 30); err != nil {
		return err
	}
	return errors.ValidateRange("outline_width", c.OutlineWidth, 0, 10)
}

// ValidateMarkers checks marker pass options against the ranges the style
// editor allows.
func (c Config) ValidateMarkers() error {
	if err := errors.ValidateRange("circle_radius", c.CircleRadius, 10, 100); err != nil {
		return err
	}
	if err := errors.ValidateRange("font_size", c.FontSize, 6, 100); err != nil {
		return err
	}
	return errors.ValidateRange("outline_width", c.OutlineWidth, 0, 5)
}
