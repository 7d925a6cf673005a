package render

import (
	"context"
	stderrors "errors"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/mapcustomizer/mapcustomizer/pkg/observability"
)

// Pass draws one kind of overlay onto the working image.
type Pass interface {
	// Name identifies the pass in logs and reports.
	Name() string
	// Enabled reports whether the pass should run. Disabled passes are
	// skipped without being invoked.
	Enabled() bool
	// Render draws onto dst. A returned error means the pass was abandoned
	// part way; whatever it already drew stays.
	Render(ctx context.Context, dst *image.NRGBA) error
}

// PassResult is the outcome of one pass.
type PassResult struct {
	Name     string
	Skipped  bool
	Err      error
	Duration time.Duration
}

// Report lists the outcome of every pass in execution order.
type Report struct {
	Passes []PassResult
}

// Failed returns the results of passes that returned an error.
func (r Report) Failed() []PassResult {
	var out []PassResult
	for _, p := range r.Passes {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// Err joins the errors of all failed passes, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, p := range r.Passes {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return stderrors.Join(errs...)
}

// Ran returns the names of the passes that were invoked.
func (r Report) Ran() []string {
	var out []string
	for _, p := range r.Passes {
		if !p.Skipped {
			out = append(out, p.Name)
		}
	}
	return out
}

// Compose copies base into a new NRGBA image and applies passes in order.
// The working image is not premultiplied, so a base with translucent pixels
// comes back unchanged when no pass draws over it.
//
// Pass errors are logged and recorded in the report; they never stop the
// remaining passes. The returned error is non-nil only when ctx is done, in
// which case the partially composed image is discarded.
func Compose(ctx context.Context, base image.Image, passes []Pass, logger *log.Logger) (*image.NRGBA, Report, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	dst := Clone(base)
	var report Report
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		if !p.Enabled() {
			logger.Debug("pass disabled", "pass", p.Name())
			report.Passes = append(report.Passes, PassResult{Name: p.Name(), Skipped: true})
			continue
		}

		hooks := observability.Render()
		hooks.OnPassStart(ctx, p.Name())
		start := time.Now()
		err := p.Render(ctx, dst)
		res := PassResult{Name: p.Name(), Err: err, Duration: time.Since(start)}
		hooks.OnPassComplete(ctx, p.Name(), res.Duration, err)
		report.Passes = append(report.Passes, res)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
				return nil, report, ctxErr
			}
			logger.Error("pass failed", "pass", p.Name(), "error", err)
			continue
		}
		logger.Debug("pass done", "pass", p.Name(), "duration", res.Duration.Round(time.Microsecond))
	}
	return dst, report, nil
}

// Clone returns an NRGBA copy of img with its bounds moved to the origin.
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
