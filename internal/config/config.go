// Package config loads server configuration from a file, the environment
// and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"empires-legacy/internal/game"
)

// EnvPrefix is prepended to every environment override, e.g.
// EMPIRE_SERVER_PORT or EMPIRE_GAME_RULES_MODE.
const EnvPrefix = "EMPIRE"

// Config is the main configuration struct combining all sub-configs.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig configures the websocket server.
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MessageRate     float64       `mapstructure:"message_rate" validate:"gt=0"` // messages per second per connection
	MessageBurst    int           `mapstructure:"message_burst" validate:"gte=1"`
}

// DatabaseConfig configures SQLite persistence.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RedisConfig configures the live-state cache. An empty URL disables it.
type RedisConfig struct {
	URL      string        `mapstructure:"url" validate:"omitempty,url"`
	StateTTL time.Duration `mapstructure:"state_ttl" validate:"gte=0"`
}

// Enabled reports whether a Redis URL was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// GameConfig holds the rules applied to newly created games.
type GameConfig struct {
	Rules     game.Rules `mapstructure:"rules"`
	UndoDepth int        `mapstructure:"undo_depth" validate:"gte=0"`
	BoardSize string     `mapstructure:"board_size" validate:"oneof=small medium large"`
}

// Loader owns a viper instance so the config file can be watched.
type Loader struct {
	v   *viper.Viper
	mu  sync.RWMutex
	cfg *Config
}

// LoadConfig loads configuration from multiple sources with priority:
// environment variables, then the config file, then defaults.
func LoadConfig(configPath string) (*Config, error) {
	l, err := NewLoader(configPath)
	if err != nil {
		return nil, err
	}
	return l.Config(), nil
}

// NewLoader reads the configuration once. A missing config file is fine.
func NewLoader(configPath string) (*Loader, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	l := &Loader{v: v}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

// Config returns the most recently loaded configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Watch reloads the config file when it changes and calls onChange with
// the new configuration. Invalid edits are logged and ignored.
func (l *Loader) Watch(onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("Ignoring invalid config change")
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		log.Info().Str("file", e.Name).Msg("Config reloaded")
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	SetDefaults(&cfg)
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
