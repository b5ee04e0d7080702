// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/dossier/pkg/registry"
	"github.com/papercomputeco/dossier/pkg/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS state (
	bucket  TEXT PRIMARY KEY,
	payload BLOB NOT NULL
)`

// Driver implements storage.Driver using SQLite. Each bucket is one row of
// the state table.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (or creates) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and serialises writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Load reads every bucket and decodes the snapshot.
func (d *Driver) Load(ctx context.Context) (registry.Snapshot, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("querying state: %w", err)
	}
	defer rows.Close()

	buckets := map[string][]byte{}
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return registry.Snapshot{}, fmt.Errorf("scanning state: %w", err)
		}
		buckets[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return registry.Snapshot{}, fmt.Errorf("reading state: %w", err)
	}

	return storage.DecodeBuckets(buckets)
}

// Save overwrites every bucket in one transaction.
func (d *Driver) Save(ctx context.Context, snapshot registry.Snapshot) error {
	buckets, err := storage.EncodeBuckets(snapshot)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, bucket := range []string{storage.BucketPeople, storage.BucketReports} {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO state (bucket, payload) VALUES (?, ?)
			 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			bucket, buckets[bucket],
		)
		if err != nil {
			return fmt.Errorf("writing %s bucket: %w", bucket, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}
