package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Logging LoggingConfig `mapstructure:"logging"`
	Search  SearchConfig  `mapstructure:"search"`
	Removal RemovalConfig `mapstructure:"removal"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	LogFile string `mapstructure:"log_file"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// SearchConfig controls backend queries
type SearchConfig struct {
	RefreshAptIndex bool `mapstructure:"refresh_apt_index"`
	AptDisplayLimit int  `mapstructure:"apt_display_limit"`
	TimeoutSecs     int  `mapstructure:"timeout_secs"`
}

// RemovalConfig controls removal commands
type RemovalConfig struct {
	ElevateCmd  string   `mapstructure:"elevate_cmd"`
	TimeoutSecs int      `mapstructure:"timeout_secs"`
	Sources     []string `mapstructure:"sources"`
}

// CleanupConfig controls residual-file cleanup after an APT purge
type CleanupConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	DesktopDirs []string `mapstructure:"desktop_dirs"`
	UserDirs    []string `mapstructure:"user_dirs"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit file, or from the default
// search paths when configFile is empty
func LoadFrom(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "pkgpurge"))
		}
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// PKGPURGE_LOGGING_LEVEL=debug etc.
	v.SetEnvPrefix("PKGPURGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	for i, dir := range cfg.Cleanup.DesktopDirs {
		cfg.Cleanup.DesktopDirs[i] = expandPath(dir)
	}
	for i, dir := range cfg.Cleanup.UserDirs {
		cfg.Cleanup.UserDirs[i] = expandPath(dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Search.AptDisplayLimit < 1 {
		return fmt.Errorf("search.apt_display_limit must be positive, got %d", c.Search.AptDisplayLimit)
	}
	if c.Search.TimeoutSecs < 1 || c.Removal.TimeoutSecs < 1 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.Removal.ElevateCmd == "" {
		return fmt.Errorf("removal.elevate_cmd cannot be empty")
	}
	switch c.Logging.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("logging.color must be auto, always or never, got %q", c.Logging.Color)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	v.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "state", "pkgpurge", "pkgpurge.log"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.color", "auto")

	v.SetDefault("search.refresh_apt_index", true)
	v.SetDefault("search.apt_display_limit", 20)
	v.SetDefault("search.timeout_secs", 60)

	v.SetDefault("removal.elevate_cmd", "sudo")
	v.SetDefault("removal.timeout_secs", 600)
	v.SetDefault("removal.sources", []string{"flatpak", "snap", "apt"})

	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.desktop_dirs", []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
		"~/.local/share/applications",
	})
	v.SetDefault("cleanup.user_dirs", []string{
		"~/.config/{name}",
		"~/.cache/{name}",
		"~/.local/share/{name}",
		"~/.{name}",
	})
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
