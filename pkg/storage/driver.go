// Package storage defines the persistence backends for the registry. Every
// driver stores the whole registry snapshot and overwrites it on each save.
package storage

import (
	"github.com/papercomputeco/dossier/pkg/registry"
)

// Driver persists registry snapshots in a storage backend.
type Driver interface {
	registry.Persister

	// Close closes the store and releases any resources.
	Close() error
}
