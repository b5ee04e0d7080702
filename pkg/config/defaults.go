package config

import "strings"

// Storage driver names accepted by storage.driver.
const (
	StorageDriverMemory   = "memory"
	StorageDriverJSON     = "json"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

// Event providers accepted by events.provider.
const (
	EventsProviderNone  = "none"
	EventsProviderKafka = "kafka"
)

const (
	defaultStorageDriver  = StorageDriverJSON
	defaultJSONPath       = "bot-data.json"
	defaultSQLitePath     = "dossier.db"
	defaultAPIListen      = ":5000"
	defaultConfirmTimeout = "60s"
	defaultEventsProvider = EventsProviderNone
	defaultEventsTopic    = "dossier.reports"
)

var storageDrivers = []string{
	StorageDriverMemory,
	StorageDriverJSON,
	StorageDriverSQLite,
	StorageDriverPostgres,
	StorageDriverRedis,
}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			JSONPath:   defaultJSONPath,
			SQLitePath: defaultSQLitePath,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Bot: BotConfig{
			ConfirmTimeout: defaultConfirmTimeout,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}

// ValidStorageDrivers returns the accepted storage.driver values.
func ValidStorageDrivers() []string {
	return append([]string{}, storageDrivers...)
}

// IsValidStorageDriver reports whether name is an accepted storage.driver value.
func IsValidStorageDriver(name string) bool {
	for _, d := range storageDrivers {
		if d == name {
			return true
		}
	}
	return false
}

func joinDrivers() string {
	return strings.Join(storageDrivers, ", ")
}
