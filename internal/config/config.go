package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sadopc/liftr/internal/store"
)

// Config holds the complete application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
	History  HistoryConfig  `mapstructure:"history"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
	File   string `mapstructure:"file"`   // "-" logs to stderr
}

// EngineConfig tunes the session engine's background work.
type EngineConfig struct {
	PersistDebounce  time.Duration `mapstructure:"persist_debounce"`
	RestSyncInterval time.Duration `mapstructure:"rest_sync_interval"`
}

type HistoryConfig struct {
	CacheSize int `mapstructure:"cache_size"` // exercises whose best set is cached
	Limit     int `mapstructure:"limit"`      // workouts shown in history views
}

// DefaultPath returns ~/.config/liftr/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "liftr", "config.yaml")
}

// Load loads configuration from file and environment variables. A missing
// file is not an error; defaults and LIFTR_* variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LIFTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = "liftr.db"
	}
	v.SetDefault("database.path", dbPath)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", filepath.Join(filepath.Dir(dbPath), "liftr.log"))

	v.SetDefault("engine.persist_debounce", "500ms")
	v.SetDefault("engine.rest_sync_interval", "1s")

	v.SetDefault("history.cache_size", 128)
	v.SetDefault("history.limit", 50)
}

func validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", cfg.Logging.Format)
	}
	if cfg.Engine.PersistDebounce <= 0 {
		return fmt.Errorf("engine.persist_debounce must be positive")
	}
	if cfg.Engine.RestSyncInterval <= 0 || cfg.Engine.RestSyncInterval > time.Second {
		return fmt.Errorf("engine.rest_sync_interval must be within (0, 1s]")
	}
	if cfg.History.CacheSize <= 0 {
		return fmt.Errorf("history.cache_size must be positive")
	}
	if cfg.History.Limit < 0 {
		return fmt.Errorf("history.limit must not be negative")
	}
	return nil
}
