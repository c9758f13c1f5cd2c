package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/gravity/pkg/store"
)

const (
	xdgAppName = "gravity"
	configFile = "config.yaml"

	defaultCalendar = "Tasks"
	defaultAPIAddr  = "127.0.0.1:8787"
	defaultTick     = time.Minute
)

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
	Slot    string `yaml:"slot,omitempty"`
}

type APIConfig struct {
	Addr           string   `yaml:"addr"`
	TokenSecret    string   `yaml:"token_secret,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

type Config struct {
	Calendar string      `yaml:"calendar"`
	Store    StoreConfig `yaml:"store"`
	API      APIConfig   `yaml:"api"`
	// Tick is how often interactive surfaces re-rank, e.g. "1m".
	Tick string `yaml:"tick,omitempty"`
}

// Dir is ~/.config/gravity.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Calendar == "" {
		c.Calendar = defaultCalendar
	}
	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.Store.Slot == "" {
		c.Store.Slot = store.DefaultSlot
	}
	if c.Store.Path == "" {
		if dir, err := Dir(); err == nil {
			switch c.Store.Backend {
			case store.BackendSQLite:
				c.Store.Path = filepath.Join(dir, "gravity.db")
			case store.BackendFile:
				c.Store.Path = filepath.Join(dir, c.Store.Slot+".json")
			}
		}
	}
	if c.API.Addr == "" {
		c.API.Addr = defaultAPIAddr
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"*"}
	}
}

// TickInterval parses Tick, falling back to one minute.
func (c *Config) TickInterval() time.Duration {
	if c.Tick == "" {
		return defaultTick
	}
	d, err := time.ParseDuration(c.Tick)
	if err != nil || d <= 0 {
		return defaultTick
	}
	return d
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Store.Backend,
		Path:    c.Store.Path,
		DSN:     c.Store.DSN,
		Slot:    c.Store.Slot,
	}
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
