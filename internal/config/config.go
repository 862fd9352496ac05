// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Camera   CameraConfig   `yaml:"camera" toml:"camera"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Profiler ProfilerConfig `yaml:"profiler" toml:"profiler"`

	// Source is the model to open. It only comes from the command line.
	Source string `yaml:"-" toml:"-"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	VSync  bool   `yaml:"vsync" toml:"vsync"`
}

// CameraConfig holds the initial orbit camera and controller settings.
type CameraConfig struct {
	Eye               [3]float32 `yaml:"eye" toml:"eye"`
	Target            [3]float32 `yaml:"target" toml:"target"`
	FovYDegrees       float32    `yaml:"fov_y_degrees" toml:"fov_y_degrees"`
	ZNear             float32    `yaml:"z_near" toml:"z_near"`
	ZFar              float32    `yaml:"z_far" toml:"z_far"`
	Radius            float32    `yaml:"radius" toml:"radius"`
	MinRadius         float32    `yaml:"min_radius" toml:"min_radius"`
	MaxRadius         float32    `yaml:"max_radius" toml:"max_radius"`
	InertiaDecay      float32    `yaml:"inertia_decay" toml:"inertia_decay"`
	Sensitivity       float32    `yaml:"sensitivity" toml:"sensitivity"`
	PixelScrollFactor float32    `yaml:"pixel_scroll_factor" toml:"pixel_scroll_factor"`
}

// RenderConfig holds frame rendering settings.
type RenderConfig struct {
	ClearColor [4]float64 `yaml:"clear_color" toml:"clear_color"`
	MSAA       int        `yaml:"msaa" toml:"msaa"`
	FrameLimit int        `yaml:"frame_limit" toml:"frame_limit"` // frames per second, 0 = uncapped
	// DoubleSided disables back-face culling for models authored with open or single-sheet geometry.
	DoubleSided bool `yaml:"double_sided" toml:"double_sided"`
}

// AssetsConfig holds model lookup and loading settings.
type AssetsConfig struct {
	BaseDir       string   `yaml:"base_dir" toml:"base_dir"`
	DecodeWorkers int      `yaml:"decode_workers" toml:"decode_workers"`
	HTTPTimeout   Duration `yaml:"http_timeout" toml:"http_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// ProfilerConfig holds frame stats settings.
type ProfilerConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// Duration is a time.Duration written as a string such as "30s" in both YAML and TOML.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Sloth Renderer",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			Eye:               [3]float32{0, 1, 2},
			Target:            [3]float32{0, 0, 0},
			FovYDegrees:       45,
			ZNear:             0.1,
			ZFar:              100,
			Radius:            5,
			MinRadius:         2,
			MaxRadius:         10,
			InertiaDecay:      0.9,
			Sensitivity:       0.2,
			PixelScrollFactor: 0.01,
		},
		Render: RenderConfig{
			ClearColor: [4]float64{0, 0, 0, 1},
			MSAA:       1,
			FrameLimit: 0,
		},
		Assets: AssetsConfig{
			BaseDir:       "~/.sloth",
			DecodeWorkers: 4,
			HTTPTimeout:   Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Profiler: ProfilerConfig{
			Enabled: false,
		},
	}
}
