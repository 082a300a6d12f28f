package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/unplayer/internal/queue"
)

const (
	defaultWorkers      = 4
	maxWorkers          = 32
	defaultMediaArtSize = 512
)

type Config struct {
	StatePath string `koanf:"state_path"` // SQLite file, default under XDG data home
	LogLevel  string `koanf:"log_level"`  // "debug", "info", "warn" or "error"

	// Initial modes for a queue with no saved state
	Queue QueueConfig `koanf:"queue"`

	Loader   LoaderConfig   `koanf:"loader"`
	MediaArt MediaArtConfig `koanf:"media_art"`
}

type QueueConfig struct {
	Shuffle bool   `koanf:"shuffle"`
	Repeat  string `koanf:"repeat"` // "off", "all" or "one"
}

type LoaderConfig struct {
	Workers int `koanf:"workers"` // concurrent metadata reads (1-32, default: 4)
}

type MediaArtConfig struct {
	Enabled  *bool  `koanf:"enabled"`   // default: true
	CacheDir string `koanf:"cache_dir"` // default under XDG cache home
	Size     int    `koanf:"size"`      // max thumbnail edge in pixels (default: 512)
}

// Load reads the config files in order of priority (last wins).
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files, skipping those that do not exist.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.StatePath = expandPath(cfg.StatePath)
	cfg.MediaArt.CacheDir = expandPath(cfg.MediaArt.CacheDir)

	if _, err := cfg.RepeatMode(); err != nil {
		return nil, fmt.Errorf("queue.repeat: %w", err)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/unplayer/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "unplayer", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// RepeatMode returns the configured initial repeat mode.
func (c *Config) RepeatMode() (queue.RepeatMode, error) {
	return queue.ParseRepeatMode(c.Queue.Repeat)
}

// SlogLevel returns the configured log level, Info when unset.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel)))
	return level, err
}

// LoaderWorkers returns the worker count with defaults applied.
func (c *Config) LoaderWorkers() int {
	switch w := c.Loader.Workers; {
	case w <= 0:
		return defaultWorkers
	case w > maxWorkers:
		return maxWorkers
	default:
		return w
	}
}

// MediaArtEnabled reports whether artwork resolution is on (default: true).
func (c *Config) MediaArtEnabled() bool {
	return c.MediaArt.Enabled == nil || *c.MediaArt.Enabled
}

// MediaArtSize returns the thumbnail size with defaults applied.
func (c *Config) MediaArtSize() int {
	if c.MediaArt.Size <= 0 {
		return defaultMediaArtSize
	}
	return c.MediaArt.Size
}
