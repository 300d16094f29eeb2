// Package config loads runtime settings from defaults, an optional config
// file, environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "STEGIMG"

	DefaultPort            = "8080"
	DefaultMaxUploadBytes  = 32 << 20
	DefaultMaxPixels       = 64 << 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

var DefaultAllowOrigins = []string{"http://localhost:3000"}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	MaxPixels       int64         `mapstructure:"max_pixels"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			AllowOrigins:    DefaultAllowOrigins,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			MaxPixels:       DefaultMaxPixels,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults, the environment and flags apply. Flags that were not set on the
// command line do not override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	vip := viper.New()
	setDefaults(vip, DefaultConfig())

	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()
	// the server has always honoured a bare PORT
	if err := vip.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if path != "" {
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(vip, flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := vip.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("`server.port` is required")
	}
	if len(c.Server.AllowOrigins) == 0 {
		return errors.New("`server.allow_origins` must list at least one origin")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("`server.max_upload_bytes` must be greater than 0")
	}
	if c.Server.MaxPixels <= 0 {
		return errors.New("`server.max_pixels` must be greater than 0")
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("`server.shutdown_timeout` must not be negative")
	}
	return nil
}

func setDefaults(vip *viper.Viper, cfg *Config) {
	vip.SetDefault("server.port", cfg.Server.Port)
	vip.SetDefault("server.allow_origins", cfg.Server.AllowOrigins)
	vip.SetDefault("server.max_upload_bytes", cfg.Server.MaxUploadBytes)
	vip.SetDefault("server.max_pixels", cfg.Server.MaxPixels)
	vip.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	vip.SetDefault("log.level", cfg.Log.Level)
	vip.SetDefault("log.development", cfg.Log.Development)
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"port":             "server.port",
	"allow-origin":     "server.allow_origins",
	"max-upload-bytes": "server.max_upload_bytes",
	"max-pixels":       "server.max_pixels",
	"shutdown-timeout": "server.shutdown_timeout",
	"log-level":        "log.level",
	"log-dev":          "log.development",
}

func bindFlags(vip *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := vip.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}
