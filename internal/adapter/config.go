package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/reel/internal/audio"
	"github.com/mmcdole/reel/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Player  PlayerConfig  `mapstructure:"player"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Source  SourceConfig  `mapstructure:"source"`
	Store   StoreConfig   `mapstructure:"store"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PlayerConfig holds playback and cache configuration
type PlayerConfig struct {
	ReadAhead    time.Duration `mapstructure:"read_ahead"`
	ReadBehind   time.Duration `mapstructure:"read_behind"`
	MuteTimeout  time.Duration `mapstructure:"mute_timeout"`
	EnginePeriod time.Duration `mapstructure:"engine_period"`
	Speed        float64       `mapstructure:"speed"` // 0 plays at the timeline rate
	Loop         string        `mapstructure:"loop"`  // "loop", "once" or "pingpong"
}

// AudioConfig holds audio output configuration
type AudioConfig struct {
	Device       string `mapstructure:"device"` // "null", "virtual" or "portaudio"
	BufferFrames int    `mapstructure:"buffer_frames"`
}

// SourceConfig selects the timeline to play
type SourceConfig struct {
	Preset   string        `mapstructure:"preset"`
	Duration time.Duration `mapstructure:"duration"` // 0 keeps the preset length
	Latency  time.Duration `mapstructure:"latency"`  // simulated decode time per request
	Workers  int           `mapstructure:"workers"`
}

// StoreConfig holds settings persistence configuration
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	FPS int `mapstructure:"fps"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			ReadAhead:    4 * time.Second,
			ReadBehind:   400 * time.Millisecond,
			MuteTimeout:  500 * time.Millisecond,
			EnginePeriod: 5 * time.Millisecond,
			Loop:         "loop",
		},
		Audio: AudioConfig{
			Device:       audio.KindVirtual,
			BufferFrames: 1024,
		},
		Source: SourceConfig{
			Preset:  "smpte-24",
			Workers: 4,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    defaultDataPath(),
		},
		UI: UIConfig{
			FPS: 30,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "reel.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the directory for logs and the settings database
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), defaultConfigPath(), ".")
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. REEL_PLAYER_READ_AHEAD=2s
	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range configValues(cfg) {
		v.SetDefault(key, value)
	}
}

func configValues(cfg *Config) map[string]any {
	return map[string]any{
		"player.read_ahead":    cfg.Player.ReadAhead,
		"player.read_behind":   cfg.Player.ReadBehind,
		"player.mute_timeout":  cfg.Player.MuteTimeout,
		"player.engine_period": cfg.Player.EnginePeriod,
		"player.speed":         cfg.Player.Speed,
		"player.loop":          cfg.Player.Loop,
		"audio.device":         cfg.Audio.Device,
		"audio.buffer_frames":  cfg.Audio.BufferFrames,
		"source.preset":        cfg.Source.Preset,
		"source.duration":      cfg.Source.Duration,
		"source.latency":       cfg.Source.Latency,
		"source.workers":       cfg.Source.Workers,
		"store.enabled":        cfg.Store.Enabled,
		"store.path":           cfg.Store.Path,
		"ui.fps":               cfg.UI.FPS,
		"logging.file":         cfg.Logging.File,
		"logging.level":        cfg.Logging.Level,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.New(), cfg, defaultConfigPath())
}

func saveConfig(v *viper.Viper, cfg *Config, configPath string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to keep snake_case key names
	for key, value := range configValues(cfg) {
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports the first setting the player cannot work with
func (c *Config) Validate() error {
	switch {
	case c.Player.ReadAhead <= 0:
		return fmt.Errorf("%w: player.read_ahead must be positive", domain.ErrInvalidConfig)
	case c.Player.ReadBehind < 0:
		return fmt.Errorf("%w: player.read_behind must not be negative", domain.ErrInvalidConfig)
	case c.Player.MuteTimeout < 0:
		return fmt.Errorf("%w: player.mute_timeout must not be negative", domain.ErrInvalidConfig)
	case c.Player.EnginePeriod <= 0:
		return fmt.Errorf("%w: player.engine_period must be positive", domain.ErrInvalidConfig)
	case c.Player.Speed < 0:
		return fmt.Errorf("%w: player.speed must not be negative", domain.ErrInvalidConfig)
	case c.Audio.BufferFrames <= 0:
		return fmt.Errorf("%w: audio.buffer_frames must be positive", domain.ErrInvalidConfig)
	case c.Source.Duration < 0:
		return fmt.Errorf("%w: source.duration must not be negative", domain.ErrInvalidConfig)
	case c.UI.FPS <= 0 || c.UI.FPS > 240:
		return fmt.Errorf("%w: ui.fps must be between 1 and 240", domain.ErrInvalidConfig)
	}
	if _, err := domain.ParseLoop(c.Player.Loop); err != nil {
		return fmt.Errorf("%w: player.loop: %v", domain.ErrInvalidConfig, err)
	}
	if !audio.IsKind(c.Audio.Device) {
		return fmt.Errorf("%w: unknown audio.device %q", domain.ErrInvalidConfig, c.Audio.Device)
	}
	return nil
}

// StorePath returns the settings database directory, empty when
// persistence is disabled.
func (c *Config) StorePath() string {
	if !c.Store.Enabled {
		return ""
	}
	return expandHome(c.Store.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
