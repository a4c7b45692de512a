// ABOUTME: Configuration management for board with YAML config loading.
// ABOUTME: Handles API endpoint, upload limits, UI defaults, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied when the config file is absent or a field is unset.
const (
	DefaultTimeoutSeconds    = 30
	DefaultMaxUploadBytes    = 5 * 1024 * 1024
	DefaultAllowedTypePrefix = "image/"
	DefaultPageSize          = 10
)

// Config stores board configuration loaded from ~/.config/board/config.yaml.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Uploads UploadsConfig `yaml:"uploads"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig holds backend REST API settings.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// UploadsConfig holds client-side upload validation limits. These are product
// defaults, not protocol requirements, so they stay overridable here.
type UploadsConfig struct {
	MaxBytes          int64  `yaml:"max_bytes"`
	AllowedTypePrefix string `yaml:"allowed_type_prefix"`
}

// UIConfig holds interactive browsing defaults.
type UIConfig struct {
	PageSize int `yaml:"page_size"`
}

// LogConfig holds logging settings. File is used while the TUI owns the
// terminal; empty means discard.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// HasAPI returns true if a backend endpoint is configured.
func (c *Config) HasAPI() bool {
	return c.API.BaseURL != ""
}

// applyDefaults fills unset fields with their defaults.
func (c *Config) applyDefaults() {
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = DefaultMaxUploadBytes
	}
	if c.Uploads.AllowedTypePrefix == "" {
		c.Uploads.AllowedTypePrefix = DefaultAllowedTypePrefix
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = DefaultPageSize
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// GetTokenPath returns the path of the persisted credential file.
func GetTokenPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

func configDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "board"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// GetLogFile returns the expanded log file path, or "" when file logging is
// not configured.
func (c *Config) GetLogFile() (string, error) {
	if c.Log.File == "" {
		return "", nil
	}
	return ExpandPath(c.Log.File)
}

// Load reads config from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
