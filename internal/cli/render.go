package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mapcustomizer/mapcustomizer/pkg/config"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

// renderFlags holds the command-line flags for the render command. Flags
// only override the project file when set explicitly.
type renderFlags struct {
	config    string
	base      string
	labels    string
	markers   string
	output    string
	noLabels  bool
	noMarkers bool
	noCache   bool
	refresh   bool

	label  style.Config
	marker style.Config

	// overrides maps a flag name to the edit it makes to the config.
	overrides map[string]func(*config.Config)
}

func newRenderFlags() *renderFlags {
	return &renderFlags{
		label:     style.DefaultLabels(),
		marker:    style.DefaultMarkers(),
		overrides: make(map[string]func(*config.Config)),
	}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	f := newRenderFlags()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw markers and labels onto the base map",
		Long: `Render the base map with speed camera markers and district labels.

Settings come from mapcustomizer.toml in the working directory (or --config),
then from flags. Without -o the result is written to
output/custom_map_<timestamp>.png.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f.config)
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runRender(cmd, cfg, f)
		},
	}

	f.register(cmd.Flags())

	return cmd
}

// register defines the render flags on fs.
func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "project file (default ./"+config.DefaultFile+")")
	f.stringFlag(fs, &f.base, "base", "", "base map image", func(c *config.Config) { c.BaseImage = f.base })
	f.stringFlag(fs, &f.labels, "labels", "", "label records file", func(c *config.Config) { c.Labels.Records = f.labels })
	f.stringFlag(fs, &f.markers, "markers", "", "marker records file", func(c *config.Config) { c.Markers.Records = f.markers })
	fs.StringVarP(&f.output, "output", "o", "", "output file; the extension picks png, jpg, gif, bmp or tif")
	f.overrides["output"] = func(c *config.Config) { c.Output = f.output }
	fs.BoolVar(&f.noLabels, "no-labels", false, "skip the label pass")
	f.overrides["no-labels"] = func(c *config.Config) { c.Labels.Enabled = !f.noLabels }
	fs.BoolVar(&f.noMarkers, "no-markers", false, "skip the marker pass")
	f.overrides["no-markers"] = func(c *config.Config) { c.Markers.Enabled = !f.noMarkers }
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	fs.BoolVar(&f.refresh, "refresh", false, "render even if the cache holds a result")

	f.styleFlags(fs, "label", &f.label, func(c *config.Config) *style.Config { return &c.Labels.Config })
	f.styleFlags(fs, "marker", &f.marker, func(c *config.Config) *style.Config { return &c.Markers.Config })
	fs.IntVar(&f.label.WrapWidth, "label-wrap", f.label.WrapWidth, "label wrap width in characters")
	f.overrides["label-wrap"] = func(c *config.Config) { c.Labels.WrapWidth = f.label.WrapWidth }
	fs.IntVar(&f.marker.CircleRadius, "circle-radius", f.marker.CircleRadius, "marker disc radius in pixels")
	f.overrides["circle-radius"] = func(c *config.Config) { c.Markers.CircleRadius = f.marker.CircleRadius }
	fs.Var(&f.marker.CircleColor, "circle-color", "marker disc color (#rrggbb or #rrggbbaa)")
	f.overrides["circle-color"] = func(c *config.Config) { c.Markers.CircleColor = f.marker.CircleColor }
	f.stringFlag(fs, &f.marker.IconPath, "icon", f.marker.IconPath, "marker icon image", func(c *config.Config) { c.Markers.IconPath = f.marker.IconPath })
	fs.Var(&f.marker.IconTint, "icon-tint", "marker icon color")
	f.overrides["icon-tint"] = func(c *config.Config) { c.Markers.IconTint = f.marker.IconTint }
	fs.BoolVar(&f.marker.ShowCaption, "caption", f.marker.ShowCaption, "draw speed captions under markers")
	f.overrides["caption"] = func(c *config.Config) { c.Markers.ShowCaption = f.marker.ShowCaption }
}

// styleFlags registers the text options shared by both passes under
// "<prefix>-".
func (f *renderFlags) styleFlags(fs *pflag.FlagSet, prefix string, src *style.Config, dst func(*config.Config) *style.Config) {
	name := func(s string) string { return prefix + "-" + s }

	f.stringFlag(fs, &src.FontPath, name("font"), src.FontPath, prefix+" font file or family name",
		func(c *config.Config) { dst(c).FontPath = src.FontPath })
	fs.Float64Var(&src.FontSize, name("font-size"), src.FontSize, prefix+" font size in pixels")
	f.overrides[name("font-size")] = func(c *config.Config) { dst(c).FontSize = src.FontSize }
	fs.IntVar(&src.OutlineWidth, name("outline"), src.OutlineWidth, prefix+" outline width in pixels")
	f.overrides[name("outline")] = func(c *config.Config) { dst(c).OutlineWidth = src.OutlineWidth }
	fs.Var(&src.TextColor, name("color"), prefix+" text color")
	f.overrides[name("color")] = func(c *config.Config) { dst(c).TextColor = src.TextColor }
	fs.Var(&src.OutlineColor, name("outline-color"), prefix+" outline color")
	f.overrides[name("outline-color")] = func(c *config.Config) { dst(c).OutlineColor = src.OutlineColor }
}

func (f *renderFlags) stringFlag(fs *pflag.FlagSet, p *string, name, value, usage string, apply func(*config.Config)) {
	fs.StringVar(p, name, value, usage)
	f.overrides[name] = apply
}

// apply copies every explicitly set flag into cfg.
func (f *renderFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *pflag.Flag) {
		if edit, ok := f.overrides[fl.Name]; ok {
			edit(cfg)
		}
	})
}

func (c *CLI) runRender(cmd *cobra.Command, cfg *config.Config, f *renderFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, cfg.Cache, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := cfg.Options()
	opts.Refresh = f.refresh
	opts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering map...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered map")

	printReport(result.Report)
	if result.CacheHit {
		printInfo("Reused cached render")
	}
	printSuccess("Saved map")
	printFile(result.OutputPath)
	printStats(result.Stats, result.CacheHit)
	if len(result.Report.Failed()) > 0 {
		printNextStep("Check the records", appName+" points list <file>")
	}
	return nil
}
