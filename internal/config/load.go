package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names an environment variable that points at a config file.
// The -config flag wins over it.
const EnvConfigPath = "OBJVIEWER_CONFIG"

// Load builds the effective configuration: defaults, then the first config
// file found, then command-line flags. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("config path %s: %w", path, err)
		}
		path = expanded
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// expandPaths resolves a leading ~ in path-valued settings.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Viewer.ScreenshotDir, &c.Logging.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// configExts lists the accepted file extensions in lookup order.
var configExts = []string{".yaml", ".yml", ".toml"}

// findConfigFile returns the first existing config file, looking in the
// working directory before the per-user config directory.
func findConfigFile() string {
	bases := []string{
		"objviewer",
		filepath.Join(ConfigDir(), "config"),
	}
	for _, base := range bases {
		for _, ext := range configExts {
			if _, err := os.Stat(base + ext); err == nil {
				return base + ext
			}
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ObjViewer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ObjViewer")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "objviewer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "objviewer")
	}
}

// isTOML reports whether path should be decoded as TOML.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// loadFromFile decodes path over cfg. Keys that do not map to a field are
// rejected so typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if isTOML(path) {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
