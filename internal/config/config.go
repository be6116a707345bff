// Package config provides persistent configuration for the namaz CLI.
//
// Configuration is stored as JSON at ~/.config/namaz/config.json
// (XDG-compliant). Every key can be overridden by a NAMAZ_<KEY> environment
// variable, and a .env file in the working directory is loaded into the
// environment first. The merge priority is:
// CLI flags > environment > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/smokyabdulrahman/namaz/internal/store"
)

const (
	configDirName  = "namaz"
	configFileName = "config.json"
	envPrefix      = "NAMAZ"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"table_path", "table_url", "cache_dir",
	"timezone", "time_format",
	"store", "store_dsn", "redis_password",
	"server_addr",
	"notifier", "pushover_token", "pushover_user", "mqtt_broker", "mqtt_topic",
	"log_level", "log_format",
	"rebuild_interval",
}

// Notifier names accepted by the notifier key.
var Notifiers = []string{"log", "pushover", "mqtt"}

// Config holds all user-configurable settings.
// Empty values mean "not set" (use defaults).
type Config struct {
	TablePath       string `json:"table_path,omitempty" mapstructure:"table_path"`
	TableURL        string `json:"table_url,omitempty" mapstructure:"table_url"`
	CacheDir        string `json:"cache_dir,omitempty" mapstructure:"cache_dir"`
	Timezone        string `json:"timezone,omitempty" mapstructure:"timezone"`
	TimeFormat      string `json:"time_format,omitempty" mapstructure:"time_format"` // "12h" or "24h"
	Store           string `json:"store,omitempty" mapstructure:"store"`
	StoreDSN        string `json:"store_dsn,omitempty" mapstructure:"store_dsn"`
	RedisPassword   string `json:"redis_password,omitempty" mapstructure:"redis_password"`
	ServerAddr      string `json:"server_addr,omitempty" mapstructure:"server_addr"`
	Notifier        string `json:"notifier,omitempty" mapstructure:"notifier"`
	PushoverToken   string `json:"pushover_token,omitempty" mapstructure:"pushover_token"`
	PushoverUser    string `json:"pushover_user,omitempty" mapstructure:"pushover_user"`
	MQTTBroker      string `json:"mqtt_broker,omitempty" mapstructure:"mqtt_broker"`
	MQTTTopic       string `json:"mqtt_topic,omitempty" mapstructure:"mqtt_topic"`
	LogLevel        string `json:"log_level,omitempty" mapstructure:"log_level"`
	LogFormat       string `json:"log_format,omitempty" mapstructure:"log_format"` // "console" or "json"
	RebuildInterval string `json:"rebuild_interval,omitempty" mapstructure:"rebuild_interval"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Timezone:        "Europe/Sofia",
		TimeFormat:      "24h",
		Store:           store.BackendFile,
		ServerAddr:      ":3000",
		Notifier:        "log",
		MQTTTopic:       "namaz/alerts",
		LogLevel:        "info",
		LogFormat:       "console",
		RebuildInterval: "6h",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadDotEnv loads a .env file from the working directory into the
// environment. Variables already set are left alone; a missing file is
// not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Effective returns the configuration after layering defaults, the config
// file at path and NAMAZ_* environment variables.
func Effective(path string) (*Config, error) {
	v := viper.New()
	defaults := Defaults()
	for _, key := range ValidKeys {
		val, _ := defaults.Get(key)
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and the value.
func (c *Config) Set(key, value string) error {
	switch key {
	case "table_path":
		c.TablePath = value
	case "table_url":
		if value != "" {
			u, err := url.Parse(value)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("invalid table_url %q: must be an http(s) URL", value)
			}
		}
		c.TableURL = value
	case "cache_dir":
		c.CacheDir = value
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "store":
		if !slices.Contains(store.Backends, value) {
			return fmt.Errorf("invalid store %q: must be one of %s", value, strings.Join(store.Backends, ", "))
		}
		c.Store = value
	case "store_dsn":
		c.StoreDSN = value
	case "redis_password":
		c.RedisPassword = value
	case "server_addr":
		c.ServerAddr = value
	case "notifier":
		if !slices.Contains(Notifiers, value) {
			return fmt.Errorf("invalid notifier %q: must be one of %s", value, strings.Join(Notifiers, ", "))
		}
		c.Notifier = value
	case "pushover_token":
		c.PushoverToken = value
	case "pushover_user":
		c.PushoverUser = value
	case "mqtt_broker":
		c.MQTTBroker = value
	case "mqtt_topic":
		if value == "" {
			return fmt.Errorf("invalid mqtt_topic: must not be empty")
		}
		c.MQTTTopic = value
	case "log_level":
		if _, err := zerolog.ParseLevel(value); err != nil || value == "" {
			return fmt.Errorf("invalid log_level %q: must be one of trace, debug, info, warn, error", value)
		}
		c.LogLevel = value
	case "log_format":
		if value != "console" && value != "json" {
			return fmt.Errorf("invalid log_format %q: must be \"console\" or \"json\"", value)
		}
		c.LogFormat = value
	case "rebuild_interval":
		d, err := time.ParseDuration(value)
		if err != nil || d < time.Minute {
			return fmt.Errorf("invalid rebuild_interval %q: must be a duration of at least 1m", value)
		}
		c.RebuildInterval = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "table_path":
		return c.TablePath, nil
	case "table_url":
		return c.TableURL, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "timezone":
		return c.Timezone, nil
	case "time_format":
		return c.TimeFormat, nil
	case "store":
		return c.Store, nil
	case "store_dsn":
		return c.StoreDSN, nil
	case "redis_password":
		return c.RedisPassword, nil
	case "server_addr":
		return c.ServerAddr, nil
	case "notifier":
		return c.Notifier, nil
	case "pushover_token":
		return c.PushoverToken, nil
	case "pushover_user":
		return c.PushoverUser, nil
	case "mqtt_broker":
		return c.MQTTBroker, nil
	case "mqtt_topic":
		return c.MQTTTopic, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "rebuild_interval":
		return c.RebuildInterval, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Secret reports whether key holds a credential that `config show` masks.
func Secret(key string) bool {
	switch key {
	case "redis_password", "pushover_token", "store_dsn":
		return true
	}
	return false
}

// Location loads the configured time zone, falling back to Europe/Sofia
// and then to the local zone.
func (c *Config) Location() *time.Location {
	name := c.Timezone
	if name == "" {
		name = Defaults().Timezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// RebuildIntervalOrDefault parses rebuild_interval, falling back to the default.
func (c *Config) RebuildIntervalOrDefault() time.Duration {
	if d, err := time.ParseDuration(c.RebuildInterval); err == nil && d >= time.Minute {
		return d
	}
	d, _ := time.ParseDuration(Defaults().RebuildInterval)
	return d
}
