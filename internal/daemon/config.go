// Package daemon holds the reliefd process configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the reliefd configuration, loaded from ~/.reliefd/config.toml.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	API      APIConfig      `toml:"api"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: filepath.Join(homeDir(), ".reliefd", "relief.db")},
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8790,
			Metrics: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultConfigPath returns the path probed when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".reliefd", "config.toml")
}

// Load reads the TOML config at path, falling back to defaults for any
// missing file or missing key.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr joins host and port for the HTTP listener.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
