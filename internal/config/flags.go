package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMotion     = flag.String("motion", "", "Motion to play after load")
	flagSeed       = flag.Int64("seed", 0, "Random seed for motions (0 = from config)")
	flagDemo       = flag.Bool("demo", false, "Load the built-in mannequin instead of a file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// ModelPath returns the first positional argument, the model to open.
func ModelPath() string {
	return flag.Arg(0)
}

// Demo reports whether --demo was given.
func Demo() bool {
	return *flagDemo
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Viewer.ShowFPS = true
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
	if *flagMotion != "" {
		cfg.Motion.Default = *flagMotion
	}
	if *flagSeed != 0 {
		cfg.Motion.Seed = *flagSeed
	}
}
