// Package config loads and persists the triggerd configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shaharia-lab/triggerd/internal/logger"
)

const (
	// DefaultPort is the loopback port the trigger server binds when none is configured
	DefaultPort = 8765

	DefaultShutdownTimeout = 10 * time.Second

	// DefaultMaxBodyBytes caps a POST /trigger body
	DefaultMaxBodyBytes int64 = 1_000_000

	appDirName     = ".triggerd"
	configFileName = "config.yaml"
)

// Environment variables that override values from the file.
const (
	EnvPort     = "TRIGGERD_PORT"
	EnvLogLevel = "TRIGGERD_LOG_LEVEL"
	EnvLogFile  = "TRIGGERD_LOG_FILE"
)

var (
	ErrInvalidPort     = errors.New("port must be between 0 and 65535")
	ErrInvalidLogLevel = errors.New("unknown log level")
	ErrInvalidBodySize = errors.New("max body bytes must be positive")
)

// ServerConfig represents the trigger server section
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// LogConfig represents the logging section
type LogConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file,omitempty"`
	Console     bool   `yaml:"console"`
	Development bool   `yaml:"development,omitempty"`
}

// Config represents the main configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the configuration used when no file exists yet
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Log: LogConfig{
			Level:   string(logger.DefaultLogLevel),
			Console: true,
		},
	}
}

// Validate reports the first invalid value in c
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return ErrInvalidBodySize
	}
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return nil
}

// LoggerConfig converts the log section into the logger package's config
func (c Config) LoggerConfig() logger.Config {
	return logger.Config{
		LogLevel:    logger.LogLevel(c.Log.Level),
		FilePath:    c.Log.File,
		UseConsole:  c.Log.Console,
		Development: c.Log.Development,
	}
}

// fillDefaults replaces zero values left by a partial file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// ApplyEnv overrides c with values found through lookup, typically os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvLogFile); ok && strings.TrimSpace(v) != "" {
		c.Log.File = strings.TrimSpace(v)
	}
	return nil
}

// DefaultPath returns the path to the configuration file
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, appDirName, configFileName), nil
}
