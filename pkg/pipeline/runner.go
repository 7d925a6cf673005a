package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mapcustomizer/mapcustomizer/pkg/cache"
	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/imageio"
	"github.com/mapcustomizer/mapcustomizer/pkg/observability"
	"github.com/mapcustomizer/mapcustomizer/pkg/render"
	"github.com/mapcustomizer/mapcustomizer/pkg/render/label"
	"github.com/mapcustomizer/mapcustomizer/pkg/render/marker"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → compose → encode → save with caching.
//
// Errors returned from Execute are fatal for the render: invalid options,
// an unreadable base image, an encoding failure or an unwritable output.
// Pass failures are only reported in Result.Report.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Render()
	result := &Result{Format: opts.Format}

	// Stage 1: Load
	loadStart := time.Now()
	hooks.OnLoadStart(ctx, opts.BaseImage)
	data, base, err := loadBase(opts.BaseImage)
	result.Stats.LoadTime = time.Since(loadStart)
	if base != nil {
		b := base.Bounds()
		result.Stats.Width, result.Stats.Height = b.Dx(), b.Dy()
	}
	hooks.OnLoadComplete(ctx, opts.BaseImage, result.Stats.Width, result.Stats.Height, result.Stats.LoadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load base image: %w", err)
	}
	opts.Logger.Debug("loaded base image", "path", opts.BaseImage, "width", result.Stats.Width, "height", result.Stats.Height)

	// Stage 2: Cache lookup
	cacheKey := r.Keyer.ArtifactKey(cache.Hash(data), r.artifactKeyOpts(opts))
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err != nil {
			opts.Logger.Warn("cache lookup failed", "error", err)
		} else if hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			opts.Logger.Debug("artifact cache hit", "key", cacheKey)
			result.Artifact = cached
			result.CacheHit = true
			result.Stats.Bytes = len(cached)
			return result, r.save(ctx, &opts, result)
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Stage 3: Compose
	renderStart := time.Now()
	passes := r.passes(opts)
	img, report, err := render.Compose(ctx, base, passes, opts.Logger)
	if err != nil {
		return nil, err
	}
	result.Image = img
	result.Report = report
	result.Stats.RenderTime = time.Since(renderStart)
	opts.Logger.Info("composed overlays", "passes", report.Ran(), "duration", result.Stats.RenderTime)

	// Stage 4: Encode
	encodeStart := time.Now()
	artifact, err := imageio.EncodeBytes(img, "out."+opts.Format)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.EncodeTime = time.Since(encodeStart)
	result.Stats.Bytes = len(artifact)

	// Degraded renders are not cached: the failure may be transient.
	if len(report.Failed()) == 0 {
		if err := r.Cache.Set(ctx, cacheKey, artifact, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache store failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(artifact))
		}
	}

	// Stage 5: Save
	return result, r.save(ctx, &opts, result)
}

func (r *Runner) save(ctx context.Context, opts *Options, result *Result) error {
	if opts.NoSave {
		return nil
	}
	start := time.Now()
	err := imageio.WriteFile(opts.Output, result.Artifact)
	result.Stats.SaveTime = time.Since(start)
	observability.Render().OnSave(ctx, opts.Output, len(result.Artifact), result.Stats.SaveTime, err)
	if err != nil {
		return err
	}
	result.OutputPath = opts.Output
	opts.Logger.Debug("saved output", "path", opts.Output, "bytes", len(result.Artifact))
	return nil
}

// passes builds the fixed pass order: markers below labels.
func (r *Runner) passes(opts Options) []render.Pass {
	return []render.Pass{
		marker.New(opts.Markers.Source(), opts.Markers.Style,
			marker.WithEnabled(opts.Markers.Enabled),
			marker.WithFonts(opts.Fonts),
			marker.WithLogger(opts.Logger)),
		label.New(opts.Labels.Source(), opts.Labels.Style,
			label.WithEnabled(opts.Labels.Enabled),
			label.WithFonts(opts.Fonts),
			label.WithLogger(opts.Logger)),
	}
}

// artifactKeyOpts fingerprints records, styles and the resource files the
// styles point at. A disabled pass contributes nothing.
func (r *Runner) artifactKeyOpts(opts Options) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: opts.Format}
	if opts.Labels.Enabled {
		k.Labels = fingerprintLabels(opts.Labels)
		k.LabelStyle = cache.HashValue(struct {
			Style any
			Font  string
		}{opts.Labels.Style, fingerprintFile(opts.Labels.Style.FontPath)})
	}
	if opts.Markers.Enabled {
		k.Markers = fingerprintMarkers(opts.Markers)
		k.MarkerStyle = cache.HashValue(struct {
			Style any
			Font  string
			Icon  string
		}{opts.Markers.Style, fingerprintFile(opts.Markers.Style.FontPath), fingerprintFile(opts.Markers.Style.IconPath)})
	}
	return k
}

func fingerprintLabels(o LabelOptions) string {
	if o.Records == nil {
		return fingerprintFile(o.File)
	}
	return cache.HashValue(o.Records)
}

func fingerprintMarkers(o MarkerOptions) string {
	if o.Records == nil {
		return fingerprintFile(o.File)
	}
	return cache.HashValue(o.Records)
}

// fingerprintFile hashes the content of path. Paths that cannot be read
// hash to a marker of their absence so the key still changes once the file
// appears.
func fingerprintFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "absent:" + path
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// ErrCode returns the error code of a pipeline error, defaulting to
// INTERNAL_ERROR for uncoded failures.
func ErrCode(err error) errors.Code {
	if c := errors.GetCode(err); c != "" {
		return c
	}
	return errors.ErrCodeInternal
}

func loadBase(path string) ([]byte, image.Image, error) {
	data, err := imageio.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	img, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIOFailure, err, "decode %s", path)
	}
	return data, img, nil
}
