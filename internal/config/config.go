package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/clipforge/clipforge/internal/platform"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Scratch location for per-render input/output files
	TempDir string `yaml:"temp_dir"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Output encode settings
	Render RenderConfig `yaml:"render"`

	// Per-platform capability overrides, merged over the built-in table
	Platforms map[string]platform.Capabilities `yaml:"platforms"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
}

type RenderConfig struct {
	VideoCodec  string `yaml:"video_codec"`
	AudioCodec  string `yaml:"audio_codec"`
	PixelFormat string `yaml:"pixel_format"`
	CRF         int    `yaml:"crf"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Registry builds the capability registry: the built-in table with any
// config-provided platform records layered on top.
func (c *Config) Registry() map[string]platform.Capabilities {
	registry := platform.Defaults()
	for name, caps := range c.Platforms {
		registry[name] = caps
	}
	return registry
}

func defaultConfig() *Config {
	return &Config{
		TempDir: filepath.Join(os.TempDir(), "clipforge"),
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
			Preset:     "fast",
		},
		Render: RenderConfig{
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
			PixelFormat: "yuv420p",
			CRF:         23,
		},
		Platforms: make(map[string]platform.Capabilities),
	}
}

func findConfigFile() string {
	candidates := []string{
		"./clipforge.yaml",
		"./clipforge.yml",
		filepath.Join(os.Getenv("HOME"), ".clipforge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
