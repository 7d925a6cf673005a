// Package pipeline runs a complete overlay render: load the base map, draw
// the marker and label passes, encode and save.
//
// The same [Runner] serves the CLI and the HTTP service, so both apply the
// same defaults, validation, caching and error classification.
//
// # Stages
//
//  1. Validate options and apply defaults
//  2. Load the base image (fatal on failure)
//  3. Look up the artifact cache by a hash of every input
//  4. Compose the passes: markers first, then labels on top
//  5. Encode by output extension and store in the cache
//  6. Write the output file atomically (fatal on failure)
//
// A failed pass does not fail the run: it is logged and reported in
// [Result.Report], and the other pass still draws.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    BaseImage: "resources/map.png",
//	    Labels:    pipeline.LabelOptions{Enabled: true, File: "resources/districts.json", Style: style.DefaultLabels()},
//	    Markers:   pipeline.MarkerOptions{Enabled: true, File: "resources/speed_cameras.json", Style: style.DefaultMarkers()},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.OutputPath)
package pipeline

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/fonts"
	pkgio "github.com/mapcustomizer/mapcustomizer/pkg/io"
	"github.com/mapcustomizer/mapcustomizer/pkg/render"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultBaseImage is the map rendered when no base image is given.
	DefaultBaseImage = "resources/map.png"

	// DefaultLabelsFile holds the district label records.
	DefaultLabelsFile = "resources/districts.json"

	// DefaultMarkersFile holds the speed camera records.
	DefaultMarkersFile = "resources/speed_cameras.json"

	// DefaultOutputDir receives timestamped outputs when no path is given.
	DefaultOutputDir = "output"

	// DefaultFormat is the output encoding when no output path is given.
	DefaultFormat = "png"
)

// DefaultOutputPath returns output/custom_map_<YYYYMMDD_HHMMSS_micro>.png for t.
func DefaultOutputPath(t time.Time) string {
	name := fmt.Sprintf("custom_map_%s_%06d.%s", t.Format("20060102_150405"), t.Nanosecond()/1000, DefaultFormat)
	return filepath.Join(DefaultOutputDir, name)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// LabelOptions configures the label pass. In-memory Records take precedence
// over File.
type LabelOptions struct {
	Enabled bool                `json:"enabled"`
	File    string              `json:"records,omitempty"`
	Records []pkgio.LabelRecord `json:"-"`
	Style   style.Config        `json:"style"`
}

// Source returns where the pass reads its records, or nil if it has none.
func (o LabelOptions) Source() pkgio.LabelSource {
	switch {
	case o.Records != nil:
		return pkgio.LabelList(o.Records)
	case o.File != "":
		return pkgio.LabelFile(o.File)
	}
	return nil
}

// MarkerOptions configures the marker pass. In-memory Records take
// precedence over File.
type MarkerOptions struct {
	Enabled bool                 `json:"enabled"`
	File    string               `json:"records,omitempty"`
	Records []pkgio.MarkerRecord `json:"-"`
	Style   style.Config         `json:"style"`
}

// Source returns where the pass reads its records, or nil if it has none.
func (o MarkerOptions) Source() pkgio.MarkerSource {
	switch {
	case o.Records != nil:
		return pkgio.MarkerList(o.Records)
	case o.File != "":
		return pkgio.MarkerFile(o.File)
	}
	return nil
}

// Options contains all configuration for one render.
type Options struct {
	BaseImage string        `json:"base_image"`
	Output    string        `json:"output,omitempty"`
	Format    string        `json:"format,omitempty"` // derived from Output when empty
	Labels    LabelOptions  `json:"labels"`
	Markers   MarkerOptions `json:"markers"`

	// Refresh renders even when the cache holds a result.
	Refresh bool `json:"refresh,omitempty"`
	// NoSave skips writing the output file; the encoded image is still
	// returned in Result.Artifact.
	NoSave bool `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Fonts  *fonts.Loader    `json:"-"`
	Now    func() time.Time `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Image is the composed image. It is nil when the artifact came from
	// the cache.
	Image *image.NRGBA

	// Artifact is the encoded output.
	Artifact []byte

	// Format is the encoding of Artifact ("png", "jpeg", ...).
	Format string

	// Report lists the outcome of each pass. Empty on a cache hit.
	Report render.Report

	// OutputPath is where Artifact was written, or "" with NoSave.
	OutputPath string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Width, Height int
	LoadTime      time.Duration
	RenderTime    time.Duration
	EncodeTime    time.Duration
	SaveTime      time.Duration
	Bytes         int
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.BaseImage == "" {
		o.BaseImage = DefaultBaseImage
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Output == "" && !o.NoSave {
		o.Output = DefaultOutputPath(o.Now())
	}
	if o.Format == "" {
		o.Format = DefaultFormat
		if o.Output != "" {
			o.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(o.Output)), ".")
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Fonts == nil {
		o.Fonts = fonts.NewLoader()
	}
}

// Validate checks the output path and the style of every enabled pass.
func (o *Options) Validate() error {
	if o.Output != "" {
		if err := errors.ValidateOutputPath(o.Output); err != nil {
			return err
		}
	}
	if err := errors.ValidateOutputPath("out." + o.Format); err != nil {
		return err
	}
	if o.Labels.Enabled {
		if err := o.Labels.Style.ValidateLabels(); err != nil {
			return fmt.Errorf("labels: %w", err)
		}
	}
	if o.Markers.Enabled {
		if err := o.Markers.Style.ValidateMarkers(); err != nil {
			return fmt.Errorf("markers: %w", err)
		}
	}
	return nil
}
