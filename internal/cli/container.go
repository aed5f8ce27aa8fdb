// Package cli wires configuration and logging for the triggerd commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/shaharia-lab/triggerd/internal/config"
	"github.com/shaharia-lab/triggerd/internal/logger"
)

// Container holds all application dependencies
type Container struct {
	App     *config.AppConfig
	Config  config.Config
	Manager *config.Manager
	Logger  logger.Logger
}

// InitOptions contains options for initialization, usually bound to root flags
type InitOptions struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
}

// NewContainer creates a container for app. Load must be called before use.
func NewContainer(app *config.AppConfig) *Container {
	return &Container{
		App:    app,
		Config: config.Default(),
		Logger: logger.Discard,
	}
}

// Load reads the configuration file and builds the logger
func (c *Container) Load(opts InitOptions) error {
	path := opts.ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	manager := config.NewManager(path, opts.EnvFile)
	cfg, err := manager.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.LogLevel != "" {
		level, ok := logger.ParseLevel(strings.ToLower(strings.TrimSpace(opts.LogLevel)))
		if !ok {
			return fmt.Errorf("%w: %q", config.ErrInvalidLogLevel, opts.LogLevel)
		}
		cfg.Log.Level = string(level)
	}

	log, err := logger.NewZapLogger(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.Config = cfg
	c.Manager = manager
	c.Logger = log.WithFields(map[string]interface{}{
		"app":     c.App.Name,
		"version": c.App.Version.Version,
	})
	c.Logger.Debug("Configuration loaded", map[string]interface{}{"path": path})
	return nil
}

// Close flushes the logger
func (c *Container) Close() {
	_ = c.Logger.Sync()
}
