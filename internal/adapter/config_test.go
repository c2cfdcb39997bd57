package adapter

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4*time.Second, cfg.Player.ReadAhead)
	assert.Equal(t, 400*time.Millisecond, cfg.Player.ReadBehind)
	assert.Equal(t, "smpte-24", cfg.Source.Preset)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
player:
  read_ahead: 2s
  loop: pingpong
audio:
  device: "null"
source:
  preset: pal-25
ui:
  fps: 60
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Player.ReadAhead)
	assert.Equal(t, 400*time.Millisecond, cfg.Player.ReadBehind, "default kept")
	assert.Equal(t, "pingpong", cfg.Player.Loop)
	assert.Equal(t, "null", cfg.Audio.Device)
	assert.Equal(t, "pal-25", cfg.Source.Preset)
	assert.Equal(t, 60, cfg.UI.FPS)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("REEL_PLAYER_READ_BEHIND", "1s")
	t.Setenv("REEL_SOURCE_PRESET", "multicam-24")

	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Player.ReadBehind)
	assert.Equal(t, "multicam-24", cfg.Source.Preset)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ui:\n  fps: 0\n"), 0644))

	_, err := loadConfig(viper.New(), dir)
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"read ahead", func(c *Config) { c.Player.ReadAhead = 0 }},
		{"read behind", func(c *Config) { c.Player.ReadBehind = -time.Second }},
		{"engine period", func(c *Config) { c.Player.EnginePeriod = 0 }},
		{"speed", func(c *Config) { c.Player.Speed = -1 }},
		{"loop", func(c *Config) { c.Player.Loop = "bounce" }},
		{"buffer", func(c *Config) { c.Audio.BufferFrames = 0 }},
		{"device", func(c *Config) { c.Audio.Device = "alsa" }},
		{"fps", func(c *Config) { c.UI.FPS = 1000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Player.ReadAhead = 3 * time.Second
	cfg.Source.Preset = "ntsc-2997"
	require.NoError(t, saveConfig(viper.New(), cfg, dir))

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestStorePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Path = "/tmp/reel"
	assert.Equal(t, "/tmp/reel", cfg.StorePath())

	cfg.Store.Enabled = false
	assert.Empty(t, cfg.StorePath())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, slog.LevelWarn.String(), entry["level"])
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reel.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)
	logger.Debug("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"debug-4", slog.LevelDebug - 4},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}
