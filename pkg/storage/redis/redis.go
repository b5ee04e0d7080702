// Package redis provides a Redis-backed storage driver. The snapshot is kept
// in one hash, one field per bucket, and writers serialise on a redislock.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/papercomputeco/dossier/pkg/registry"
	"github.com/papercomputeco/dossier/pkg/storage"
)

const (
	// DefaultKeyPrefix namespaces every key the driver writes.
	DefaultKeyPrefix = "dossier"

	lockTTL   = 10 * time.Second
	lockRetry = 50 * time.Millisecond
)

// Config holds the Redis connection settings.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Driver implements storage.Driver using Redis.
type Driver struct {
	client *goredis.Client
	locker *redislock.Client

	stateKey string
	lockKey  string
}

// NewDriver connects to Redis and verifies the server is reachable.
func NewDriver(ctx context.Context, c Config) (*Driver, error) {
	if c.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	prefix := c.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Driver{
		client:   client,
		locker:   redislock.New(client),
		stateKey: prefix + ":state",
		lockKey:  prefix + ":state:lock",
	}, nil
}

// Load reads the state hash and decodes the snapshot.
func (d *Driver) Load(ctx context.Context) (registry.Snapshot, error) {
	fields, err := d.client.HGetAll(ctx, d.stateKey).Result()
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("reading state: %w", err)
	}

	buckets := make(map[string][]byte, len(fields))
	for bucket, payload := range fields {
		buckets[bucket] = []byte(payload)
	}

	return storage.DecodeBuckets(buckets)
}

// Save overwrites both buckets atomically while holding the state lock.
func (d *Driver) Save(ctx context.Context, snapshot registry.Snapshot) error {
	buckets, err := storage.EncodeBuckets(snapshot)
	if err != nil {
		return err
	}

	lock, err := d.locker.Obtain(ctx, d.lockKey, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetry),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("state lock busy: %w", err)
	}
	if err != nil {
		return fmt.Errorf("obtaining state lock: %w", err)
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()

	_, err = d.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, d.stateKey,
			storage.BucketPeople, buckets[storage.BucketPeople],
			storage.BucketReports, buckets[storage.BucketReports],
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	return nil
}

// Reset removes the stored state.
func (d *Driver) Reset(ctx context.Context) error {
	return d.client.Del(ctx, d.stateKey).Err()
}

// Close closes the client.
func (d *Driver) Close() error {
	return d.client.Close()
}
