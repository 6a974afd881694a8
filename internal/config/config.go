// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"catering-finance/internal/errors"
	"catering-finance/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. CATERING_SERVER_ADDR
const EnvPrefix = "CATERING"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version"`

	// Rules locates the business-rules document
	Rules RulesConfig `json:"rules" mapstructure:"rules"`

	// Storage contains snapshot store configuration
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Output contains output configuration
	Output OutputConfig `json:"output" mapstructure:"output"`

	// Menu contains menu pricing parameters
	Menu MenuConfig `json:"menu" mapstructure:"menu"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// RulesConfig locates the rule configuration document
type RulesConfig struct {
	// Path is an HCL or JSON rules document; empty means built-in defaults
	Path string `json:"path" mapstructure:"path"`

	// MergeDefaults overlays the document onto the built-in defaults
	MergeDefaults bool `json:"merge_defaults" mapstructure:"merge_defaults"`
}

// StorageConfig contains snapshot store settings
type StorageConfig struct {
	// Path is the SQLite database file
	Path string `json:"path" mapstructure:"path"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr                string `json:"addr" mapstructure:"addr"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" mapstructure:"default_format"`
}

// MenuConfig contains menu pricing settings
type MenuConfig struct {
	// SideItemIDs maps the four side flags to catalog ids, in flag order
	SideItemIDs []string `json:"side_item_ids" mapstructure:"side_item_ids"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".catering-finance", "snapshots.db")

	return &Config{
		Version: "1.0",
		Rules: RulesConfig{
			MergeDefaults: true,
		},
		Storage: StorageConfig{
			Path: dbPath,
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Menu: MenuConfig{
			SideItemIDs: []string{"salad", "rice", "noodles", "vegetables"},
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields defaults;
// CATERING_* environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Config("read config file", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Config("stat config file", err)
		}
	}

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Config("decode config", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("rules.path", d.Rules.Path)
	v.SetDefault("rules.merge_defaults", d.Rules.MergeDefaults)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout_seconds", d.Server.ReadTimeoutSeconds)
	v.SetDefault("server.write_timeout_seconds", d.Server.WriteTimeoutSeconds)
	v.SetDefault("output.default_format", d.Output.DefaultFormat)
	v.SetDefault("menu.side_item_ids", d.Menu.SideItemIDs)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.file.max_size_mb", d.Logging.File.MaxSizeMB)
	v.SetDefault("logging.file.max_backups", d.Logging.File.MaxBackups)
	v.SetDefault("logging.file.max_age_days", d.Logging.File.MaxAgeDays)
	v.SetDefault("logging.file.compress", d.Logging.File.Compress)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
