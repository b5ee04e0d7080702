package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/dossier/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the DOSSIER_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (DOSSIER_API_LISTEN, DOSSIER_STORAGE_DRIVER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: DOSSIER_API_LISTEN, DOSSIER_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("DOSSIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materialises the effective configuration after flag, env, file
// and default resolution.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			JSONPath:    v.GetString("storage.json_path"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
			RedisAddr:   v.GetString("storage.redis_addr"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Bot: BotConfig{
			ConfirmTimeout: v.GetString("bot.confirm_timeout"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
		Log: LogConfig{
			Debug: v.GetBool("log.debug"),
			JSON:  v.GetBool("log.json"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.json_path", d.Storage.JSONPath)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.redis_addr", d.Storage.RedisAddr)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Bot
	v.SetDefault("bot.confirm_timeout", d.Bot.ConfirmTimeout)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Log
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
}
