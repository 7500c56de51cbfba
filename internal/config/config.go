// Package config handles viewer and tool configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Viewer     ViewerConfig     `yaml:"viewer"`
	Model      ModelConfig      `yaml:"model"`
	Motion     MotionConfig     `yaml:"motion"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ViewerConfig holds window and rendering settings.
type ViewerConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	FOV        float32    `yaml:"fov"`        // vertical, degrees
	Background [3]float32 `yaml:"background"` // RGB clear color
	Grid       bool       `yaml:"grid"`
	ShowFPS    bool       `yaml:"show_fps"`
}

// ModelConfig controls how loaded models are framed.
type ModelConfig struct {
	Normalize  bool    `yaml:"normalize"`   // center and scale on load
	FitSize    float32 `yaml:"fit_size"`    // largest extent after normalizing
	FitPadding float32 `yaml:"fit_padding"` // camera distance multiplier
}

// MotionConfig holds procedural motion settings.
type MotionConfig struct {
	Default  string `yaml:"default"`  // motion started after load, empty for none
	Autoplay bool   `yaml:"autoplay"` // restart the default motion when it ends
	Seed     int64  `yaml:"seed"`     // random source for randomized motions
	FPS      int    `yaml:"fps"`      // headless sampling rate
}

// ScreenshotConfig holds screenshot output settings.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Format string `yaml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        45,
			Background: [3]float32{0.09, 0.1, 0.12},
			Grid:       true,
		},
		Model: ModelConfig{
			Normalize:  true,
			FitSize:    1.6,
			FitPadding: 1.3,
		},
		Motion: MotionConfig{
			Seed: 1,
			FPS:  30,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "rigscope",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
