package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete medley configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig identifies the library and where it persists
type LibraryConfig struct {
	// Name is the library identifier used for librarian registration and
	// diagnostic labeling (default: "songs")
	Name string `mapstructure:"name"`
	// Path is the library database file (default: $XDG_DATA_HOME/medley/library.db)
	Path string `mapstructure:"path"`
	// ValidateOnLoad drops restored entries whose backing file no longer exists
	ValidateOnLoad bool `mapstructure:"validate_on_load"`
}

// ScanConfig controls filesystem discovery
type ScanConfig struct {
	// Roots are the directories to scan for tracks
	Roots []string `mapstructure:"roots"`
	// Exclude lists absolute path prefixes to skip (raw prefix match)
	Exclude []string `mapstructure:"exclude"`
	// SkipHidden skips dot-prefixed files and directories (default: true)
	SkipHidden bool `mapstructure:"skip_hidden"`
}

// WatchConfig controls the live filesystem watcher
type WatchConfig struct {
	// Enabled turns on the watcher for the scan roots
	Enabled bool `mapstructure:"enabled"`
	// SaveInterval is how often a dirty library is flushed to disk
	SaveInterval time.Duration `mapstructure:"save_interval"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is the minimum level to log: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Dir is where the log file is written; empty logs to stderr
	Dir string `mapstructure:"dir"`
}

// SetDefaults registers default values for all configuration keys
func SetDefaults() {
	viper.SetDefault("library.name", "songs")
	viper.SetDefault("library.path", defaultLibraryPath())
	viper.SetDefault("library.validate_on_load", true)
	viper.SetDefault("scan.roots", []string{})
	viper.SetDefault("scan.exclude", []string{})
	viper.SetDefault("scan.skip_hidden", true)
	viper.SetDefault("watch.enabled", false)
	viper.SetDefault("watch.save_interval", 30*time.Second)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.dir", "")
}

// Load unmarshals the current viper state into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigDir returns the directory where medley looks for its config file
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "medley")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "medley")
}

// defaultLibraryPath returns the default library database location
func defaultLibraryPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "medley", "library.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "library.db")
	}
	return filepath.Join(home, ".local", "share", "medley", "library.db")
}
