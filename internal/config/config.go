// Package config loads templar configuration from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultStorePath is the template file used when nothing else is configured.
const DefaultStorePath = "templates_data.json"

// Config is the resolved application configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
	TUI     TUIConfig     `mapstructure:"tui"`
}

// StoreConfig locates the template document.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// HistoryConfig controls the SQLite history log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Limit   int    `mapstructure:"limit"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TUIConfig controls the terminal form.
type TUIConfig struct {
	Theme string `mapstructure:"theme"`
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "templar")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "templar")
	}
	return ".templar"
}

// DataDir returns the per-user data directory.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "templar")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "share", "templar")
	}
	return ".templar"
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.path", DefaultStorePath)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(DataDir(), "history.db"))
	v.SetDefault("history.limit", 20)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("tui.theme", "default")
}

// NewViper returns a viper instance with defaults and TEMPLAR_ env binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("TEMPLAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result.
// An explicit cfgFile must exist; the default location is optional.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	cfg, err := Load(NewViper(), "")
	if err != nil {
		cfg = &Config{}
		cfg.normalize()
	}
	return cfg
}

func (c *Config) normalize() {
	c.Store.Path = expandHome(strings.TrimSpace(c.Store.Path))
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	c.History.Path = expandHome(strings.TrimSpace(c.History.Path))
	if c.History.Path == "" {
		c.History.Path = filepath.Join(DataDir(), "history.db")
	}
	if c.History.Limit <= 0 {
		c.History.Limit = 20
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = "default"
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
