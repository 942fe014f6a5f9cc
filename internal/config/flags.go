package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and strict mesh lifecycle checks")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagDedup      = flag.String("dedup", "", "Vertex dedup strategy: hash or linear")
	flagPartition  = flag.String("partition", "", "Submesh partition: contiguous, material or legacy")
	flagNoReload   = flag.Bool("no-reload", false, "Disable reloading the model when the file changes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Import.StrictLifecycle = true
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagDedup != "" {
		cfg.Import.Dedup = *flagDedup
	}
	if *flagPartition != "" {
		cfg.Import.Partition = *flagPartition
	}
	if *flagNoReload {
		cfg.Viewer.HotReload = false
	}
}
