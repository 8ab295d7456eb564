// Package config loads ironshelf settings from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = "config"
	ConfigDirName  = "ironshelf"
	EnvPrefix      = "IRONSHELF"

	// MaxHistory is the hard cap on remembered connection profiles.
	MaxHistory = 5
	// MaxShareExpiry is the longest validity a SigV4 presigned URL can carry.
	MaxShareExpiry = 7 * 24 * time.Hour
)

type Config struct {
	Server     Server     `mapstructure:"server" validate:"required"`
	Log        Log        `mapstructure:"log" validate:"required"`
	History    History    `mapstructure:"history" validate:"required"`
	Share      Share      `mapstructure:"share" validate:"required"`
	Connection Connection `mapstructure:"connection"`
}

type Server struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
	// SessionKey seals the session cookie. Must be 32 bytes when set; empty
	// means a random key per process.
	SessionKey string `mapstructure:"sessionKey" validate:"omitempty,len=32"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json console"`
}

type History struct {
	Enabled         bool   `mapstructure:"enabled"`
	RememberSecrets bool   `mapstructure:"rememberSecrets"`
	Path            string `mapstructure:"path" validate:"required"`
	Limit           int    `mapstructure:"limit" validate:"gte=1,lte=5"`
}

type Share struct {
	DefaultExpiry time.Duration `mapstructure:"defaultExpiry" validate:"gt=0"`
}

// Connection holds CLI defaults; the web UI always asks.
type Connection struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Region    string `mapstructure:"region"`
	PathStyle bool   `mapstructure:"pathStyle"`
}

// Dir returns the directory holding the config file and the history database.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting user config directory: %w", err)
	}
	return filepath.Join(base, ConfigDirName), nil
}

// New builds a viper instance with defaults, env binding and, when found,
// the config file. An explicit path that does not exist is an error.
func New(explicitPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		return v, nil
	}

	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.sessionKey", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.rememberSecrets", false)
	v.SetDefault("history.limit", MaxHistory)
	v.SetDefault("share.defaultExpiry", MaxShareExpiry)
	v.SetDefault("connection.region", "us-east-1")
	v.SetDefault("connection.pathStyle", true)

	if dir, err := Dir(); err == nil {
		v.SetDefault("history.path", filepath.Join(dir, "history.db"))
	} else {
		v.SetDefault("history.path", "ironshelf-history.db")
	}
	// Registered so AutomaticEnv can populate them.
	v.SetDefault("connection.endpoint", "")
	v.SetDefault("connection.accessKey", "")
	v.SetDefault("connection.secretKey", "")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
