package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"empires-legacy/internal/game"
)

var configProfile string

// SetProfile selects a named profile so several players can share a
// machine.
func SetProfile(profile string) {
	configProfile = profile
}

// Config holds client configuration.
type Config struct {
	Server string `json:"server"`

	// Game the CLI acts on by default.
	GameID   string         `json:"game_id,omitempty"`
	JoinCode string         `json:"join_code,omitempty"`
	Seat     *game.PlayerID `json:"seat,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{Server: "localhost:30000"}
}

// LoadConfig loads config from the user's config directory.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save saves the config to disk.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.saveFile(path)
}

func (c *Config) saveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigPath returns the path to the config file of the active profile.
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	filename := "config.json"
	if configProfile != "" {
		filename = "config-" + configProfile + ".json"
	}
	return filepath.Join(configDir, "empires-legacy", filename), nil
}
