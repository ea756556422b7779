package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a destrack session.
// Values are populated from .destrack.yaml, DESTRACK_* env vars, and CLI flags.
type Config struct {
	AuditLog     string `mapstructure:"audit_log"`
	DBPath       string `mapstructure:"db_path"`
	ExportDir    string `mapstructure:"export_dir"`
	ExportFormat string `mapstructure:"export_format"`
	InboxDir     string `mapstructure:"inbox_dir"`
	LogLevel     string `mapstructure:"log_level"`
	Verbose      bool   `mapstructure:"verbose"`
}

// InMemory is the db_path value that selects an in-memory store.
const InMemory = ":memory:"

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("audit_log", "")
	viper.SetDefault("db_path", "destrack.db")
	viper.SetDefault("export_dir", ".")
	viper.SetDefault("export_format", "json")
	viper.SetDefault("inbox_dir", "")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
