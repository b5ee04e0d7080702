package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent dossier configuration stored as config.toml
// in the .dossier/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
	Bot     BotConfig     `toml:"bot"`
	Events  EventsConfig  `toml:"events"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig selects the persistence driver and its target.
type StorageConfig struct {
	Driver      string `toml:"driver,omitempty"`
	JSONPath    string `toml:"json_path,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
	RedisAddr   string `toml:"redis_addr,omitempty"`
}

// APIConfig holds dashboard API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// BotConfig holds command handling settings.
type BotConfig struct {
	// ConfirmTimeout is a Go duration string, e.g. "60s".
	ConfirmTimeout string `toml:"confirm_timeout,omitempty"`
}

// Timeout parses ConfirmTimeout.
func (b BotConfig) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(b.ConfirmTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid bot.confirm_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid bot.confirm_timeout: must be positive, got %s", d)
	}
	return d, nil
}

// EventsConfig holds report event publishing settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma-separated list of Kafka bootstrap addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Debug bool `toml:"debug,omitempty"`
	JSON  bool `toml:"json,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if !IsValidStorageDriver(v) {
				return fmt.Errorf("invalid value for storage.driver: %q (available: %s)", v, joinDrivers())
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.json_path": {
		get: func(c *Config) string { return c.Storage.JSONPath },
		set: func(c *Config, v string) error { c.Storage.JSONPath = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"storage.redis_addr": {
		get: func(c *Config) string { return c.Storage.RedisAddr },
		set: func(c *Config, v string) error { c.Storage.RedisAddr = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"bot.confirm_timeout": {
		get: func(c *Config) string { return c.Bot.ConfirmTimeout },
		set: func(c *Config, v string) error {
			if _, err := (BotConfig{ConfirmTimeout: v}).Timeout(); err != nil {
				return err
			}
			c.Bot.ConfirmTimeout = v
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			if v != EventsProviderNone && v != EventsProviderKafka {
				return fmt.Errorf("invalid value for events.provider: %q (available: none, kafka)", v)
			}
			c.Events.Provider = v
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"log.debug": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Debug) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.debug: %w", err)
			}
			c.Log.Debug = b
			return nil
		},
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.json: %w", err)
			}
			c.Log.JSON = b
			return nil
		},
	},
}
