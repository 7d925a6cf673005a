// Package marker draws speed camera markers: a translucent disc, a tinted
// icon centered on the camera, and an optional outlined speed caption below
// the icon.
package marker

import (
	"context"
	"image"
	"image/draw"
	"io"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/fonts"
	pkgio "github.com/mapcustomizer/mapcustomizer/pkg/io"
	"github.com/mapcustomizer/mapcustomizer/pkg/render/sprite"
	"github.com/mapcustomizer/mapcustomizer/pkg/render/text"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

// Name identifies the marker pass in logs and reports.
const Name = "markers"

// Option configures a [Pass].
type Option func(*Pass)

// WithFonts shares a font loader with the pass.
func WithFonts(l *fonts.Loader) Option { return func(p *Pass) { p.fonts = l } }

// WithLogger sets the logger for warnings about degraded resources.
func WithLogger(l *log.Logger) Option { return func(p *Pass) { p.logger = l } }

// WithEnabled switches the pass on or off.
func WithEnabled(on bool) Option { return func(p *Pass) { p.enabled = on } }

// Pass renders marker records. It implements render.Pass.
type Pass struct {
	src     pkgio.MarkerSource
	style   style.Config
	fonts   *fonts.Loader
	logger  *log.Logger
	enabled bool
}

// New returns an enabled marker pass drawing the records of src with cfg.
func New(src pkgio.MarkerSource, cfg style.Config, opts ...Option) *Pass {
	p := &Pass{src: src, style: cfg, enabled: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.fonts == nil {
		p.fonts = fonts.NewLoader()
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	return p
}

func (p *Pass) Name() string  { return Name }
func (p *Pass) Enabled() bool { return p.enabled && p.src != nil }

// Render draws every marker onto dst.
//
// The icon is prepared once per call. When it cannot be loaded the markers
// are drawn without icons and a single warning is logged. The caption font
// degrades to the built-in face the same way.
func (p *Pass) Render(ctx context.Context, dst *image.NRGBA) error {
	recs, err := p.src.Markers(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrap(errors.GetCode(err), err, "load markers")
	}

	iconSize := p.style.IconSize()
	icon := p.icon(iconSize)

	var face font.Face
	if p.style.ShowCaption {
		face, err = p.fonts.Face(p.style.FontPath, p.style.FontSize)
		if face == nil {
			return err
		}
		defer face.Close()
		if err != nil {
			p.logger.Warn("caption font unavailable, using built-in font", "font", p.style.FontPath, "error", errors.UserMessage(err))
		}
	}

	disc := Disc(p.style.CircleRadius, p.style.CircleColor)
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		PasteDisc(dst, disc, rec.X, rec.Y)
		if icon != nil {
			sprite.PasteCentered(dst, icon, rec.X, rec.Y)
		}
		if face != nil && rec.Speed != "" {
			left, top := CaptionOrigin(face, rec, iconSize)
			text.DrawStroked(dst, face, rec.Speed, left, top, p.style.OutlineWidth, p.style.OutlineColor, p.style.TextColor)
		}
	}
	p.logger.Debug("markers drawn", "count", len(recs), "icons", icon != nil)
	return nil
}

// icon loads and prepares the marker sprite, or returns nil when there is
// none to draw.
func (p *Pass) icon(size int) image.Image {
	if p.style.IconPath == "" {
		return nil
	}
	src, err := sprite.Load(p.style.IconPath)
	if err != nil {
		p.logger.Warn("marker icon unavailable, drawing markers without icons", "icon", p.style.IconPath, "error", errors.UserMessage(err))
		return nil
	}
	return sprite.Prepare(src, size, p.style.IconTint)
}

// CaptionOrigin returns the top-left of the caption line box for rec. The
// caption is centered on rec.X by its ink width, and its top sits at
// rec.Y + iconSize/2 - inkHeight + [style.CaptionOffset].
func CaptionOrigin(face font.Face, rec pkgio.MarkerRecord, iconSize int) (left, top float64) {
	w, h := text.InkBounds(face, rec.Speed)
	left = float64(rec.X) - w/2
	top = float64(rec.Y) + float64(iconSize)/2 - h + style.CaptionOffset
	return left, top
}

// Disc renders a filled circle of radius r onto a transparent square layer
// of side 2r+1, the pixel footprint of a disc centered on a pixel.
func Disc(r int, c style.Color) image.Image {
	r = max(r, 0)
	side := 2*r + 1
	dc := gg.NewContext(side, side)
	dc.DrawCircle(float64(r)+0.5, float64(r)+0.5, float64(r)+0.5)
	dc.SetColor(c)
	dc.Fill()
	return dc.Image()
}

// PasteDisc alpha-composites a layer from [Disc] onto dst centered on (x, y).
// Parts outside dst are clipped.
func PasteDisc(dst draw.Image, disc image.Image, x, y int) {
	b := disc.Bounds()
	r := b.Dx() / 2
	at := image.Pt(x-r, y-r)
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, disc, b.Min, draw.Over)
}
