// Package dotdir manages the .dossier/ and ~/.dossier directories that hold
// the config file and, by default, the JSON data file.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the dossier directory.
	dirName = ".dossier"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .dossier/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.dossier/ dir
//  3. Home ~/.dossier/ dir
//
// If none is found an empty path is returned without error.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating dossier directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if local := filepath.Join(cwd, dirName); isDir(local) {
		return local, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if global := filepath.Join(home, dirName); isDir(global) {
		return global, nil
	}

	return "", nil
}

// Init creates a .dossier/ directory under root and returns its path.
func (m *Manager) Init(root string) (string, error) {
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dossier directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}

// Resolve joins name onto the resolved dossier directory. Absolute names and
// an unresolved directory return name unchanged.
func (m *Manager) Resolve(overrideDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	if target == "" {
		return name, nil
	}

	return filepath.Join(target, name), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
