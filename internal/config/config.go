// Package config provides configuration management for the bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Prices   PricesConfig   `mapstructure:"prices"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// EngineConfig holds autosell engine settings.
type EngineConfig struct {
	IntervalSeconds int     `mapstructure:"interval_seconds"` // floor 3
	WatchSens       float64 `mapstructure:"watch_sens"`       // percent, clamp [0.1, 100]
	StatePath       string  `mapstructure:"state_path"`
	BackupPath      string  `mapstructure:"backup_path"`
	JournalPath     string  `mapstructure:"journal_path"`
}

// PricesConfig holds price-source settings.
type PricesConfig struct {
	TTLSeconds int  `mapstructure:"ttl_seconds"` // clamp [1, 3600]
	Live       bool `mapstructure:"live"`
}

// TelegramConfig holds alert delivery settings.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
	Path  string `mapstructure:"path"`
}

// DefaultDir returns the configuration directory.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mork-fetch")
}

// Load reads configuration from the given file, or from the default
// location when path is empty. A missing file yields defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	dir := DefaultDir()
	v.SetDefault("engine.interval_seconds", 10)
	v.SetDefault("engine.watch_sens", 2.0)
	v.SetDefault("engine.state_path", filepath.Join(dir, "autosell_state.json"))
	v.SetDefault("engine.backup_path", filepath.Join(dir, "autosell_state.backup.json"))
	v.SetDefault("engine.journal_path", filepath.Join(dir, "fills.db"))
	v.SetDefault("prices.ttl_seconds", 5)
	v.SetDefault("prices.live", true)
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.path", filepath.Join(dir, "logs", "fetch.log"))
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Engine.IntervalSeconds < 0 {
		return fmt.Errorf("engine.interval_seconds must not be negative")
	}
	if c.Engine.WatchSens < 0 {
		return fmt.Errorf("engine.watch_sens must not be negative")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// Interval returns the evaluation interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Engine.IntervalSeconds) * time.Second
}
