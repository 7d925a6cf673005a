package label

import (
	"context"
	"image"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/fonts"
	pkgio "github.com/mapcustomizer/mapcustomizer/pkg/io"
	"github.com/mapcustomizer/mapcustomizer/pkg/render/text"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

// Name identifies the label pass in logs and reports.
const Name = "labels"

// Option configures a [Pass].
type Option func(*Pass)

// WithFonts shares a font loader, typically a caching one, with the pass.
func WithFonts(l *fonts.Loader) Option { return func(p *Pass) { p.fonts = l } }

// WithLogger sets the logger for warnings about degraded resources.
func WithLogger(l *log.Logger) Option { return func(p *Pass) { p.logger = l } }

// WithEnabled switches the pass on or off.
func WithEnabled(on bool) Option { return func(p *Pass) { p.enabled = on } }

// Pass renders label records. It implements render.Pass.
type Pass struct {
	src     pkgio.LabelSource
	style   style.Config
	fonts   *fonts.Loader
	logger  *log.Logger
	enabled bool
}

// New returns an enabled label pass drawing the records of src with cfg.
func New(src pkgio.LabelSource, cfg style.Config, opts ...Option) *Pass {
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

// Render draws every label onto dst.
//
// An unreadable records file fails the pass before anything is drawn. An
// unusable font is not an error: the built-in fallback face is used and a
// warning logged.
func (p *Pass) Render(ctx context.Context, dst *image.NRGBA) error {
	recs, err := p.src.Labels(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrap(errors.GetCode(err), err, "load labels")
	}

	face, err := p.fonts.Face(p.style.FontPath, p.style.FontSize)
	if face == nil {
		return err
	}
	defer face.Close()
	if err != nil {
		p.logger.Warn("label font unavailable, using built-in font", "font", p.style.FontPath, "error", errors.UserMessage(err))
	}

	outline, fill := p.style.OutlineColor, p.style.TextColor
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, ln := range Layout(rec, face, p.style) {
			text.DrawStroked(dst, face, ln.Text, ln.X, ln.Y, p.style.OutlineWidth, outline, fill)
		}
	}
	p.logger.Debug("labels drawn", "count", len(recs))
	return nil
}
