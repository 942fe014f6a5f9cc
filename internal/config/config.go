// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strings"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Import  ImportConfig  `yaml:"import" toml:"import"`
	Viewer  ViewerConfig  `yaml:"viewer" toml:"viewer"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`
}

// ImportConfig controls the mesh import pipeline.
type ImportConfig struct {
	Dedup           string         `yaml:"dedup" toml:"dedup"`         // "hash" or "linear"
	Partition       string         `yaml:"partition" toml:"partition"` // "contiguous", "material" or "legacy"
	StrictLifecycle bool           `yaml:"strict_lifecycle" toml:"strict_lifecycle"`
	MaxTextureSize  int            `yaml:"max_texture_size" toml:"max_texture_size"` // 0 = unlimited
	DefaultMaterial MaterialConfig `yaml:"default_material" toml:"default_material"`
}

// MaterialConfig describes the fallback material for submeshes without one.
type MaterialConfig struct {
	Ambient   [3]float32 `yaml:"ambient" toml:"ambient"`
	Diffuse   [3]float32 `yaml:"diffuse" toml:"diffuse"`
	Specular  [3]float32 `yaml:"specular" toml:"specular"`
	Shininess float32    `yaml:"shininess" toml:"shininess"`
}

// ViewerConfig holds interactive viewer settings.
type ViewerConfig struct {
	HotReload     bool       `yaml:"hot_reload" toml:"hot_reload"`
	ClearColor    [4]float32 `yaml:"clear_color" toml:"clear_color"`
	ScreenshotDir string     `yaml:"screenshot_dir" toml:"screenshot_dir"`

	// Key light direction in degrees
	LightAzimuth   float32 `yaml:"light_azimuth" toml:"light_azimuth"`
	LightElevation float32 `yaml:"light_elevation" toml:"light_elevation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Import: ImportConfig{
			Dedup:          "hash",
			Partition:      "contiguous",
			MaxTextureSize: 0,
			DefaultMaterial: MaterialConfig{
				Ambient:   [3]float32{0, 0, 0},
				Diffuse:   [3]float32{1, 1, 1},
				Specular:  [3]float32{0, 0, 0},
				Shininess: 256,
			},
		},
		Viewer: ViewerConfig{
			HotReload:     true,
			ClearColor:    [4]float32{0.1, 0.1, 0.12, 1},
			ScreenshotDir: "screenshots",

			LightAzimuth:   35,
			LightElevation: 50,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be applied.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	switch strings.ToLower(c.Import.Dedup) {
	case "hash", "linear":
	default:
		return fmt.Errorf("unknown dedup strategy %q", c.Import.Dedup)
	}
	switch strings.ToLower(c.Import.Partition) {
	case "contiguous", "material", "legacy":
	default:
		return fmt.Errorf("unknown partition policy %q", c.Import.Partition)
	}
	if c.Import.MaxTextureSize < 0 {
		return fmt.Errorf("max_texture_size must not be negative, got %d", c.Import.MaxTextureSize)
	}
	return nil
}
