// Package config loads tabkeeper configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all client configuration
type Config struct {
	API     APIConfig
	Store   StoreConfig
	Log     LogConfig
	Notify  NotifyConfig
	Metrics MetricsConfig
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// StoreConfig holds local storage settings
type StoreConfig struct {
	Path string // SQLite file for preferences and the session token
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string // debug, info, warn, error
}

// NotifyConfig holds the tab-updated notification settings
type NotifyConfig struct {
	Message string
	Timeout time.Duration
}

// MetricsConfig holds metrics endpoint settings
type MetricsConfig struct {
	Addr string // empty disables the endpoint
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://product-tracker-api-production.up.railway.app")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.user_agent", "tabkeeper/1.0")
	v.SetDefault("store.path", "./data/tabkeeper.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("notify.message", "Your tab has been updated!")
	v.SetDefault("notify.timeout", "10s")
	v.SetDefault("metrics.addr", "")
}

// Load reads configuration.
//
// Priority (highest to lowest):
// 1. Environment variables with TABKEEPER_ prefix (e.g., TABKEEPER_API_BASE_URL)
// 2. The config file: path if given, else tabkeeper.yaml in . or $HOME/.config/tabkeeper
// 3. Built-in defaults
//
// A missing config file is only an error when path is set explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tabkeeper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tabkeeper")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TABKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		API: APIConfig{
			BaseURL:   strings.TrimRight(v.GetString("api.base_url"), "/"),
			Timeout:   v.GetDuration("api.timeout"),
			UserAgent: v.GetString("api.user_agent"),
		},
		Store: StoreConfig{
			Path: v.GetString("store.path"),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("log.level")),
		},
		Notify: NotifyConfig{
			Message: v.GetString("notify.message"),
			Timeout: v.GetDuration("notify.timeout"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: api.base_url %q must be an http(s) URL", ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", ErrInvalidConfig)
	}
	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("%w: notify.timeout must be positive", ErrInvalidConfig)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required", ErrInvalidConfig)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
