package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --storage
// on "dossier serve", "dossier serve api" and "dossier simulate").
type Flag struct {
	// Name is the long flag name (e.g. "storage").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.driver").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagStorageDriver  = "storage"
	FlagJSONPath       = "json-path"
	FlagSQLite         = "sqlite"
	FlagPostgresDSN    = "postgres-dsn"
	FlagRedisAddr      = "redis-addr"
	FlagAPIListen      = "api-listen"
	FlagConfirmTimeout = "confirm-timeout"
	FlagEventsProvider = "events"
	FlagKafkaBrokers   = "kafka-brokers"
	FlagKafkaTopic     = "kafka-topic"
	FlagLogJSON        = "log-json"

	// Standalone subcommand variants use "listen" as the flag name.
	FlagAPIListenStandalone = "api-listen-standalone"
)

// DossierFlags is the registry shared by every dossier command.
var DossierFlags = FlagSet{
	FlagStorageDriver:       {Name: "storage", Shorthand: "s", ViperKey: "storage.driver", Description: "Storage driver (memory, json, sqlite, postgres, redis)"},
	FlagJSONPath:            {Name: "json-path", ViperKey: "storage.json_path", Description: "Path to the JSON data file"},
	FlagSQLite:              {Name: "sqlite", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite database"},
	FlagPostgresDSN:         {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagRedisAddr:           {Name: "redis-addr", ViperKey: "storage.redis_addr", Description: "Redis server address"},
	FlagAPIListen:           {Name: "api-listen", Shorthand: "a", ViperKey: "api.listen", Description: "Address for the dashboard API to listen on"},
	FlagAPIListenStandalone: {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the dashboard API to listen on"},
	FlagConfirmTimeout:      {Name: "confirm-timeout", ViperKey: "bot.confirm_timeout", Description: "How long a conflict confirmation waits for a click"},
	FlagEventsProvider:      {Name: "events", ViperKey: "events.provider", Description: "Report event provider (none, kafka)"},
	FlagKafkaBrokers:        {Name: "kafka-brokers", ViperKey: "events.brokers", Description: "Comma-separated Kafka bootstrap addresses"},
	FlagKafkaTopic:          {Name: "kafka-topic", ViperKey: "events.topic", Description: "Kafka topic for report events"},
	FlagLogJSON:             {Name: "log-json", ViperKey: "log.json", Description: "Write logs as JSON"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
