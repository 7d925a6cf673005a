// Package config loads the mapcustomizer.toml project file.
//
// A project file names the base map, the output and the two record files,
// and carries the style of each pass:
//
//	base_image = "resources/map.png"
//	output = "output/map.png"
//
//	[labels]
//	records = "resources/districts.json"
//	font_size = 18
//	wrap_width = 8
//
//	[markers]
//	records = "resources/speed_cameras.json"
//	circle_color = "#ff000032"
//
// Keys left out keep their defaults, so an empty file is a valid project.
// Colors are "#rrggbb" or "#rrggbbaa".
package config

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mapcustomizer/mapcustomizer/internal/atomicfile"
	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/pipeline"
	"github.com/mapcustomizer/mapcustomizer/pkg/style"
)

// DefaultFile is the project file looked up in the working directory.
const DefaultFile = "mapcustomizer.toml"

// DefaultServerAddr is where "serve" listens unless configured.
const DefaultServerAddr = ":8080"

// Config is the parsed project file.
type Config struct {
	BaseImage string       `toml:"base_image"`
	Output    string       `toml:"output,omitempty"`
	Labels    PassConfig   `toml:"labels"`
	Markers   PassConfig   `toml:"markers"`
	Cache     CacheConfig  `toml:"cache"`
	Server    ServerConfig `toml:"server"`
}

// PassConfig holds the settings of one render pass. The style keys sit
// directly in the pass table.
type PassConfig struct {
	Enabled bool   `toml:"enabled"`
	Records string `toml:"records"`
	style.Config
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	// Disabled turns caching off entirely.
	Disabled bool `toml:"disabled"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir,omitempty"`
	// RedisURL selects a Redis backend instead of the file cache.
	RedisURL string `toml:"redis_url,omitempty"`
}

// ServerConfig configures the HTTP render service.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no project file exists.
func DefaultConfig() *Config {
	return &Config{
		BaseImage: pipeline.DefaultBaseImage,
		Labels: PassConfig{
			Enabled: true,
			Records: pipeline.DefaultLabelsFile,
			Config:  style.DefaultLabels(),
		},
		Markers: PassConfig{
			Enabled: true,
			Records: pipeline.DefaultMarkersFile,
			Config:  style.DefaultMarkers(),
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Parse decodes TOML over the defaults. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the project file at path. A missing file is reported as
// RESOURCE_MISSING so callers can fall back to [DefaultConfig].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeResourceMissing, err, "config %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return cfg, nil
}

// Save writes the config to path as TOML using an atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := atomicfile.Write(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "write config %s", path)
	}
	return nil
}

// Validate checks the style ranges of every enabled pass.
func (c *Config) Validate() error {
	if c.Output != "" {
		if err := errors.ValidateOutputPath(c.Output); err != nil {
			return err
		}
	}
	if c.Labels.Enabled {
		if err := c.Labels.ValidateLabels(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[labels]")
		}
	}
	if c.Markers.Enabled {
		if err := c.Markers.ValidateMarkers(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[markers]")
		}
	}
	return nil
}

// Options converts the project into pipeline options.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		BaseImage: c.BaseImage,
		Output:    c.Output,
		Labels: pipeline.LabelOptions{
			Enabled: c.Labels.Enabled,
			File:    c.Labels.Records,
			Style:   c.Labels.Config,
		},
		Markers: pipeline.MarkerOptions{
			Enabled: c.Markers.Enabled,
			File:    c.Markers.Records,
			Style:   c.Markers.Config,
		},
	}
}
