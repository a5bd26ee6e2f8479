// Package config handles runtime configuration loading and management.
package config

import "github.com/Faultbox/coati/internal/engine/gpu"

// Config holds all runtime settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
	Demo    DemoConfig    `yaml:"demo"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds render context and batch settings.
type RenderConfig struct {
	StackDepth    int        `yaml:"stack_depth"`
	StrictStacks  bool       `yaml:"strict_stacks"`
	BatchCapacity int        `yaml:"batch_capacity"`
	ClearColour   [4]float32 `yaml:"clear_colour,flow"`
}

// Clear returns the clear colour as a gpu.Colour.
func (r RenderConfig) Clear() gpu.Colour {
	c := r.ClearColour
	return gpu.Colour{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	MasterVolume float64 `yaml:"master_volume"`
	TrackVolume  float64 `yaml:"track_volume"`
	SampleVolume float64 `yaml:"sample_volume"`
	SampleRadius float64 `yaml:"sample_radius"`
	Track        string  `yaml:"track"`
	Sample       string  `yaml:"sample"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DemoConfig holds settings for the demo command.
type DemoConfig struct {
	AssetDirs   []string `yaml:"asset_dirs"`
	WatchAssets bool     `yaml:"watch_assets"`
	Atlas      string   `yaml:"atlas"`
	Sprites    int      `yaml:"sprites"`
	Frames     int      `yaml:"frames"`
	Screenshot string   `yaml:"screenshot"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "coati",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			StackDepth:    32,
			StrictStacks:  false,
			BatchCapacity: 256,
			ClearColour:   [4]float32{0.1, 0.1, 0.12, 1},
		},
		Audio: AudioConfig{
			Enabled:      false,
			MasterVolume: 0.8,
			TrackVolume:  0.7,
			SampleVolume: 0.8,
			SampleRadius: 0.5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Demo: DemoConfig{
			AssetDirs: []string{"."},
			Sprites:   64,
		},
	}
}
