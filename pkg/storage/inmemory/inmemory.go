// Package inmemory provides a storage driver that keeps the last saved
// snapshot in process memory.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/dossier/pkg/registry"
)

// Driver implements storage.Driver in memory.
type Driver struct {
	// mu is a read write sync mutex guarding snapshot
	mu sync.RWMutex

	snapshot registry.Snapshot
	saves    int
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Load returns a copy of the last saved snapshot.
func (d *Driver) Load(_ context.Context) (registry.Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return copySnapshot(d.snapshot), nil
}

// Save replaces the stored snapshot.
func (d *Driver) Save(_ context.Context, snapshot registry.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.snapshot = copySnapshot(snapshot)
	d.saves++
	return nil
}

// Saves returns how many times Save was called.
func (d *Driver) Saves() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.saves
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

func copySnapshot(s registry.Snapshot) registry.Snapshot {
	return registry.Snapshot{
		People:  append([]registry.Person{}, s.People...),
		Reports: append([]registry.Report{}, s.Reports...),
	}
}
