package config

import (
	"path/filepath"
)

// Config represents the complete auctiond configuration
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Journal  JournalConfig  `toml:"journal" mapstructure:"journal"`
	Clock    ClockConfig    `toml:"clock" mapstructure:"clock"`
	Genesis  GenesisConfig  `toml:"genesis" mapstructure:"genesis"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// DefaultConfigName is the file name searched for when no path is given
const DefaultConfigName = "auctiond.toml"

// SearchPaths lists the directories searched for DefaultConfigName
var SearchPaths = []string{".", "/etc/auctiond"}

// DefaultConfigPath returns the first existing config file in SearchPaths,
// or "" when there is none.
func DefaultConfigPath() string {
	for _, dir := range SearchPaths {
		p := filepath.Join(dir, DefaultConfigName)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// GetConfigPath returns the path the configuration was read from, or ""
// when it was built from defaults and environment only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
