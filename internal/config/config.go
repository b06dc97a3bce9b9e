// Package config provides configuration for the topology editor server.
//
// Config file locations (priority order):
//  1. $COREGRAPH_CONFIG
//  2. ./coregraph.yaml
//  3. $XDG_CONFIG_HOME/coregraph/config.yaml
//  4. ~/.config/coregraph/config.yaml
//  5. /etc/coregraph/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path.
	EnvConfigPath = "COREGRAPH_CONFIG"
	// ConfigFileName is the default config file name.
	ConfigFileName = "coregraph.yaml"
	// ConfigDirName is the config directory name under XDG.
	ConfigDirName = "coregraph"
)

// Config is the editor server configuration.
type Config struct {
	Listen  string        `yaml:"listen"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Subnets SubnetsConfig `yaml:"subnets"`
}

// DaemonConfig locates the emulation daemon.
type DaemonConfig struct {
	URL       string `yaml:"url"`
	SessionID int    `yaml:"session_id"`
}

// SubnetsConfig holds the address templates handed to the daemon's
// allocator when an edge needs fresh interface addresses.
type SubnetsConfig struct {
	IPv4 string `yaml:"ipv4"`
	IPv6 string `yaml:"ipv6"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, path, nil
}

// Save writes config to the specified path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	return &Config{
		Listen: ":3000",
		Daemon: DaemonConfig{URL: "http://127.0.0.1:5180", SessionID: 1},
		Subnets: SubnetsConfig{
			IPv4: "10.0.0.1/24",
			IPv6: "2001::/64",
		},
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Daemon.URL == "" {
		c.Daemon.URL = def.Daemon.URL
	}
	if c.Daemon.SessionID == 0 {
		c.Daemon.SessionID = def.Daemon.SessionID
	}
	if c.Subnets.IPv4 == "" {
		c.Subnets.IPv4 = def.Subnets.IPv4
	}
	if c.Subnets.IPv6 == "" {
		c.Subnets.IPv6 = def.Subnets.IPv6
	}
}

// FindConfigPath searches for a config file in priority order. Returns the
// empty string if none was found.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	systemPath := filepath.Join("/etc", ConfigDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
