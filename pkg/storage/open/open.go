// Package open builds a storage.Driver from the storage configuration.
package open

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/config"
	"github.com/papercomputeco/dossier/pkg/storage"
	"github.com/papercomputeco/dossier/pkg/storage/inmemory"
	"github.com/papercomputeco/dossier/pkg/storage/jsonfile"
	"github.com/papercomputeco/dossier/pkg/storage/postgres"
	"github.com/papercomputeco/dossier/pkg/storage/redis"
	"github.com/papercomputeco/dossier/pkg/storage/sqlite"
)

// UnknownDriverError is returned for an unrecognised storage.driver value.
type UnknownDriverError struct {
	Name string
}

func (e UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown storage driver %q (available: %v)", e.Name, config.ValidStorageDrivers())
}

// Driver opens the driver named by c.Driver. Relative file paths are taken as
// given; callers resolve them against the dot dir beforehand.
func Driver(ctx context.Context, c config.StorageConfig, logger *zap.Logger) (storage.Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch c.Driver {
	case config.StorageDriverMemory:
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case config.StorageDriverJSON, "":
		d, err := jsonfile.NewDriver(c.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create JSON file driver: %w", err)
		}
		logger.Info("using JSON file storage", zap.String("path", d.Path()))
		return d, nil

	case config.StorageDriverSQLite:
		if c.SQLitePath == "" {
			return nil, fmt.Errorf("storage.sqlite_path is required for the %s driver", c.Driver)
		}
		d, err := sqlite.NewDriver(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		logger.Info("using SQLite storage", zap.String("path", c.SQLitePath))
		return d, nil

	case config.StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return nil, fmt.Errorf("storage.postgres_dsn is required for the %s driver", c.Driver)
		}
		d, err := postgres.NewDriver(ctx, c.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		logger.Info("using PostgreSQL storage")
		return d, nil

	case config.StorageDriverRedis:
		d, err := redis.NewDriver(ctx, redis.Config{Addr: c.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis driver: %w", err)
		}
		logger.Info("using Redis storage", zap.String("addr", c.RedisAddr))
		return d, nil

	default:
		return nil, UnknownDriverError{Name: c.Driver}
	}
}
