package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/unplayer/internal/queue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/music", filepath.Join(home, "music")},
		{"~", home},
		{"/var/lib/unplayer.db", "/var/lib/unplayer.db"},
		{"relative/state.db", "relative/state.db"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	require.NotEmpty(t, paths)
	assert.Equal(t, "config.toml", paths[len(paths)-1])
	if len(paths) > 1 {
		assert.Equal(t, filepath.Join("unplayer", "config.toml"),
			filepath.Join(filepath.Base(filepath.Dir(paths[0])), filepath.Base(paths[0])))
	}
}

func TestLoadFrom_NoFiles(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))

	require.NoError(t, err)
	mode, err := cfg.RepeatMode()
	require.NoError(t, err)
	assert.Equal(t, queue.RepeatOff, mode)
	assert.False(t, cfg.Queue.Shuffle)
	assert.Equal(t, defaultWorkers, cfg.LoaderWorkers())
	assert.True(t, cfg.MediaArtEnabled())
	assert.Equal(t, defaultMediaArtSize, cfg.MediaArtSize())
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFrom_AllKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
state_path = "/tmp/unplayer/state.db"
log_level = "debug"

[queue]
shuffle = true
repeat = "one"

[loader]
workers = 8

[media_art]
enabled = false
cache_dir = "/tmp/art"
size = 256
`)

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/unplayer/state.db", cfg.StatePath)
	assert.True(t, cfg.Queue.Shuffle)
	mode, _ := cfg.RepeatMode()
	assert.Equal(t, queue.RepeatOne, mode)
	assert.Equal(t, 8, cfg.LoaderWorkers())
	assert.False(t, cfg.MediaArtEnabled())
	assert.Equal(t, "/tmp/art", cfg.MediaArt.CacheDir)
	assert.Equal(t, 256, cfg.MediaArtSize())
	level, _ := cfg.SlogLevel()
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFrom_LastFileWins(t *testing.T) {
	global := writeConfig(t, t.TempDir(), "log_level = \"warn\"\n[queue]\nrepeat = \"all\"\n")
	local := writeConfig(t, t.TempDir(), "[queue]\nrepeat = \"off\"\n")

	cfg, err := LoadFrom(global, local)

	require.NoError(t, err)
	mode, _ := cfg.RepeatMode()
	assert.Equal(t, queue.RepeatOff, mode)
	assert.Equal(t, "warn", cfg.LogLevel, "keys absent from the later file are kept")
}

func TestLoadFrom_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}
	path := writeConfig(t, t.TempDir(), "state_path = \"~/q.db\"\n[media_art]\ncache_dir = \"~/art\"\n")

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "q.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(home, "art"), cfg.MediaArt.CacheDir)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad repeat", "[queue]\nrepeat = \"sometimes\"\n"},
		{"bad log level", "log_level = \"loud\"\n"},
		{"bad toml", "[queue\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, t.TempDir(), tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoaderWorkers_Clamped(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{0, defaultWorkers},
		{-3, defaultWorkers},
		{1, 1},
		{100, maxWorkers},
	}
	for _, tt := range tests {
		cfg := &Config{Loader: LoaderConfig{Workers: tt.workers}}
		if got := cfg.LoaderWorkers(); got != tt.want {
			t.Errorf("LoaderWorkers() with %d = %d, want %d", tt.workers, got, tt.want)
		}
	}
}
