package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// WindowConfig is the [window] section.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

// RenderConfig is the [render] section.
type RenderConfig struct {
	// ClearColor is the linear RGBA the world pass clears to.
	ClearColor [4]float64 `toml:"clear_color"`
	// SphereBands is the latitude and longitude band count of the built-in sphere.
	SphereBands [2]int `toml:"sphere_bands"`
	// MaxConsecutiveFailures stops the engine after that many frames in a row fail to render. 0 never stops.
	MaxConsecutiveFailures int `toml:"max_consecutive_failures"`
	// PresentMode is "mailbox", "vsync" or "uncapped". Window.VSync forces "vsync".
	PresentMode string `toml:"present_mode"`
}

// AssetsConfig is the [assets] section.
type AssetsConfig struct {
	// Manifest is the asset manifest path, relative to the config file. Empty loads built-ins only.
	Manifest      string `toml:"manifest"`
	HotReload     bool   `toml:"hot_reload"`
	DecodeWorkers int    `toml:"decode_workers"`
}

// LogConfig is the [log] section.
type LogConfig struct {
	Level string `toml:"level"`
}

// InputConfig is the [input] section: context → action → key name.
type InputConfig struct {
	Bindings map[string]map[string]string `toml:"bindings"`
}

// Config is the engine configuration file.
type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Assets AssetsConfig `toml:"assets"`
	Log    LogConfig    `toml:"log"`
	Input  InputConfig  `toml:"input"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - *Config: a 1280x720 window, Mailbox presentation, built-in assets only and info logging
func Default() *Config {
	return &Config{
		Window: WindowConfig{Title: "oxy", Width: 1280, Height: 720},
		Render: RenderConfig{
			ClearColor:             [4]float64{0.05, 0.06, 0.08, 1},
			SphereBands:            [2]int{16, 32},
			MaxConsecutiveFailures: 120,
			PresentMode:            "mailbox",
		},
		Assets: AssetsConfig{DecodeWorkers: 4},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a TOML config file over the defaults. Keys missing from the file keep their default values.
// A relative Assets.Manifest is resolved against the config file's directory.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - *Config: the loaded and validated configuration
//   - error: an error if the file cannot be read or parsed, or ErrInvalid if a value is out of range
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if c.Assets.Manifest != "" && !filepath.IsAbs(c.Assets.Manifest) {
		c.Assets.Manifest = filepath.Join(filepath.Dir(path), c.Assets.Manifest)
	}
	return c, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every section and wraps ErrInvalid with the first bad value.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: render.clear_color[%d] = %v", ErrInvalid, i, v)
		}
	}
	if c.Render.SphereBands[0] < 2 || c.Render.SphereBands[1] < 3 {
		return fmt.Errorf("%w: render.sphere_bands %v, need at least [2, 3]", ErrInvalid, c.Render.SphereBands)
	}
	if c.Render.MaxConsecutiveFailures < 0 {
		return fmt.Errorf("%w: render.max_consecutive_failures %d", ErrInvalid, c.Render.MaxConsecutiveFailures)
	}
	if _, err := renderer.ParsePresentMode(c.Render.PresentMode); err != nil {
		return fmt.Errorf("%w: render.present_mode: %v", ErrInvalid, err)
	}
	if c.Assets.DecodeWorkers < 0 {
		return fmt.Errorf("%w: assets.decode_workers %d", ErrInvalid, c.Assets.DecodeWorkers)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// PresentMode returns the configured present mode. VSync in the window section overrides render.present_mode.
func (c *Config) PresentMode() renderer.PresentMode {
	if c.Window.VSync {
		return renderer.PresentModeVSync
	}
	mode, _ := renderer.ParsePresentMode(c.Render.PresentMode)
	return mode
}

// InputBindings returns the configured bindings, or the defaults when the input section is empty.
// Configured contexts replace the default context of the same name.
func (c *Config) InputBindings() *world.InputBindings {
	b := world.DefaultInputBindings()
	if len(c.Input.Bindings) == 0 {
		return b
	}
	for name, actions := range world.FromKeyNames(c.Input.Bindings).Bindings {
		b.Bindings[name] = actions
	}
	return b
}
