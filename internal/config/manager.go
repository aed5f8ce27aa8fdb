package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Manager reads and writes the YAML configuration file
type Manager struct {
	path    string
	envFile string
	lookup  func(string) (string, bool)
}

// NewManager creates a Manager for the file at path. envFile, when not empty,
// names a dotenv file whose values are loaded before overrides are applied.
func NewManager(path, envFile string) *Manager {
	return &Manager{
		path:    path,
		envFile: envFile,
		lookup:  os.LookupEnv,
	}
}

// Path returns the configuration file path
func (m *Manager) Path() string {
	return m.path
}

// Exists checks if the configuration file is present
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return !os.IsNotExist(err)
}

// Load loads the existing configuration, creating the file with defaults when
// it is missing or empty. Environment overrides are applied last.
func (m *Manager) Load() (Config, error) {
	cfg, err := m.read()
	if err != nil {
		return Config{}, err
	}

	if m.envFile != "" {
		if err := godotenv.Load(m.envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", m.envFile, err)
		}
	}
	if err := cfg.ApplyEnv(m.lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", m.path, err)
	}
	return cfg, nil
}

func (m *Manager) read() (Config, error) {
	if m.path == "" {
		return Config{}, fmt.Errorf("config file path not set")
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		def := Default()
		if err := m.Save(def); err != nil {
			return Config{}, fmt.Errorf("failed to save default config: %w", err)
		}
		return def, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes cfg to disk, creating the parent directory if needed
func (m *Manager) Save(cfg Config) error {
	if m.path == "" {
		return fmt.Errorf("config file path not set")
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(m.path, data, 0644)
}
