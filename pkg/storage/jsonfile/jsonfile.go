// Package jsonfile provides a storage driver that keeps the registry in a
// single JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/papercomputeco/dossier/pkg/registry"
	"github.com/papercomputeco/dossier/pkg/storage"
)

// DefaultFileName is the data file used when no path is configured.
const DefaultFileName = "bot-data.json"

// document is the on-disk layout.
type document struct {
	People  []registry.Person `json:"people"`
	Reports []registry.Report `json:"reports"`
}

// Driver implements storage.Driver over a JSON file.
type Driver struct {
	mu   sync.Mutex
	path string
}

// NewDriver creates a driver for the file at path. The parent directory is
// created if it does not exist; the file itself is written on first Save.
func NewDriver(path string) (*Driver, error) {
	if path == "" {
		path = DefaultFileName
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	return &Driver{path: path}, nil
}

// Path returns the data file path.
func (d *Driver) Path() string {
	return d.path
}

// Load reads the data file. A missing file yields an empty snapshot.
func (d *Driver) Load(_ context.Context) (registry.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return registry.Snapshot{People: []registry.Person{}, Reports: []registry.Report{}}, nil
	}
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("reading %s: %w", d.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return registry.Snapshot{}, storage.CorruptError{Bucket: d.path, Err: err}
	}
	if doc.People == nil {
		doc.People = []registry.Person{}
	}
	if doc.Reports == nil {
		doc.Reports = []registry.Report{}
	}

	return registry.Snapshot{People: doc.People, Reports: doc.Reports}, nil
}

// Save writes the snapshot to a temporary file and renames it over the data
// file, so readers never see a partial document.
func (d *Driver) Save(_ context.Context, snapshot registry.Snapshot) error {
	doc := document{People: snapshot.People, Reports: snapshot.Reports}
	if doc.People == nil {
		doc.People = []registry.Person{}
	}
	if doc.Reports == nil {
		doc.Reports = []registry.Report{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", d.path, err)
	}

	return nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
