package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagStrict     = flag.Bool("strict", false, "Panic on render stack overflow and underflow")
	flagFrames     = flag.Int("frames", 0, "Exit after this many frames (0 runs until closed)")
	flagScreenshot = flag.String("screenshot", "", "Save the last frame as PNG to this path")
	flagAtlas      = flag.String("atlas", "", "Sprite atlas image (png, bmp, tga, jpeg, gif)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
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
	if *flagStrict {
		cfg.Render.StrictStacks = true
	}
	if *flagFrames > 0 {
		cfg.Demo.Frames = *flagFrames
	}
	if *flagScreenshot != "" {
		cfg.Demo.Screenshot = *flagScreenshot
	}
	if *flagAtlas != "" {
		cfg.Demo.Atlas = *flagAtlas
	}
}
