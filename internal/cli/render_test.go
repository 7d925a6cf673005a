package cli

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/mapcustomizer/mapcustomizer/pkg/config"
	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

// runCLI executes the root command with args and returns the log output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs bytes.Buffer
	c := New(&logs, LogDebug)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return logs.String(), err
}

func TestRenderFlagsOverrideOnlyWhenSet(t *testing.T) {
	f := newRenderFlags()
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	f.register(fs)

	err := fs.Parse([]string{
		"--base", "maps/city.png",
		"--no-markers",
		"--label-font-size", "24",
		"--label-color", "#00ff00",
		"--circle-color", "#0000ff80",
		"--caption=false",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Labels.WrapWidth = 12
	f.apply(fs, cfg)

	if cfg.BaseImage != "maps/city.png" {
		t.Errorf("BaseImage = %q, want maps/city.png", cfg.BaseImage)
	}
	if cfg.Markers.Enabled {
		t.Error("--no-markers should disable the marker pass")
	}
	if !cfg.Labels.Enabled {
		t.Error("label pass should stay enabled")
	}
	if cfg.Labels.FontSize != 24 {
		t.Errorf("label FontSize = %g, want 24", cfg.Labels.FontSize)
	}
	if cfg.Labels.TextColor != style.RGB(0, 255, 0) {
		t.Errorf("label TextColor = %v, want #00ff00", cfg.Labels.TextColor)
	}
	if cfg.Markers.CircleColor != style.RGBA(0, 0, 255, 0x80) {
		t.Errorf("CircleColor = %v, want #0000ff80", cfg.Markers.CircleColor)
	}
	if cfg.Markers.ShowCaption {
		t.Error("--caption=false should hide captions")
	}
	// Unset flags keep the project value, not the flag default.
	if cfg.Labels.WrapWidth != 12 {
		t.Errorf("WrapWidth = %d, want 12 from the project", cfg.Labels.WrapWidth)
	}
	if cfg.Markers.FontSize != 14 {
		t.Errorf("marker FontSize = %g, want default 14", cfg.Markers.FontSize)
	}
}

func TestRenderFlagsRejectBadColor(t *testing.T) {
	f := newRenderFlags()
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	f.register(fs)

	if err := fs.Parse([]string{"--icon-tint", "orange"}); err == nil {
		t.Error("Parse() should reject a color that is not hex")
	}
}

func TestRenderCommandWritesOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writePNG(t, "map.png", 60, 40)
	writeFile(t, "districts.json", `[{"name": "Old Town", "x": 30, "y": 20}]`)
	writeFile(t, "cameras.json", `[{"name": "Cam 1", "x": 10, "y": 10, "speed": "50 km/h"}]`)
	out := filepath.Join(dir, "out", "map.png")

	logs, err := runCLI(t, "render",
		"--base", "map.png",
		"--labels", "districts.json",
		"--markers", "cameras.json",
		"--label-font=",
		"--marker-font=",
		"--icon=",
		"--no-cache",
		"-o", out,
	)
	if err != nil {
		t.Fatalf("render error: %v\nlogs:\n%s", err, logs)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
		t.Errorf("output size = %dx%d, want 60x40", b.Dx(), b.Dy())
	}
}

func TestRenderCommandMissingRecordsStillSaves(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writePNG(t, "map.png", 20, 20)

	logs, err := runCLI(t, "render", "--base", "map.png", "--labels", "absent.json",
		"--no-markers", "--label-font=", "--no-cache", "-o", "out.png")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if _, err := os.Stat("out.png"); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if !bytes.Contains([]byte(logs), []byte("absent.json")) {
		t.Errorf("logs should name the missing records file:\n%s", logs)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode errors.Code
	}{
		{
			name:     "missing base image",
			args:     []string{"render", "--base", "absent.png", "--no-cache", "-o", "out.png"},
			wantCode: errors.ErrCodeIOFailure,
		},
		{
			name:     "font size out of range",
			args:     []string{"render", "--label-font-size", "500", "--no-cache"},
			wantCode: errors.ErrCodeInvalidConfig,
		},
		{
			name:     "unsupported output format",
			args:     []string{"render", "--no-cache", "-o", "out.svg"},
			wantCode: errors.ErrCodeInvalidFormat,
		},
		{
			name:     "explicit config missing",
			args:     []string{"render", "--config", "absent.toml"},
			wantCode: errors.ErrCodeResourceMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestRenderCommandReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writePNG(t, "base.png", 30, 30)
	writeFile(t, config.DefaultFile, `
base_image = "base.png"
output = "project.png"

[labels]
enabled = false

[markers]
enabled = false

[cache]
disabled = true
`)

	if _, err := runCLI(t, "render"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	if _, err := os.Stat("project.png"); err != nil {
		t.Errorf("project output not written: %v", err)
	}
}
