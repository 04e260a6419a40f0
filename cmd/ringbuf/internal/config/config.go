// Package config loads the ringbuf CLI configuration.
//
// The file lives at os.UserConfigDir()/ringbuf/config.yaml unless --config
// points elsewhere. A missing file is not an error: defaults apply.
//
//	capacity: 4096
//	codec: lines
//	log_level: info
//	format: yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "ringbuf"

	// configFile is the file name inside appDir.
	configFile = "config.yaml"
)

// Codec names accepted in the config file.
const (
	CodecLines   = "lines"
	CodecMsgpack = "msgpack"
)

// Config holds the CLI settings.
type Config struct {
	// Capacity is the default ring capacity.
	Capacity int `yaml:"capacity" json:"capacity"`

	// Codec selects the framing used by pipe: lines or msgpack.
	Codec string `yaml:"codec" json:"codec"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Format is the default output format for stats.
	Format string `yaml:"format" json:"format"`

	// Path is where the config was loaded from.
	Path string `yaml:"-" json:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Capacity: 4096,
		Codec:    CodecLines,
		LogLevel: "info",
		Format:   "yaml",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, configFile), nil
}

// Load reads the config at path, or at DefaultPath when path is empty.
// Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	cfg.Path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", c.Capacity)
	}
	switch c.Codec {
	case CodecLines, CodecMsgpack:
	default:
		return fmt.Errorf("unknown codec %q", c.Codec)
	}
	switch c.Format {
	case "yaml", "json", "panel", "raw":
	default:
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes the config to c.Path, creating the directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
