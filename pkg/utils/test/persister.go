package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/dossier/pkg/registry"
)

// ErrMockPersister is returned by MockPersister when a failure is requested.
var ErrMockPersister = errors.New("mock persister failure")

// MockPersister is a registry.Persister that records every saved snapshot and
// can be told to fail.
type MockPersister struct {
	mu sync.Mutex

	// Initial is returned by Load.
	Initial registry.Snapshot

	// Saves accumulates every snapshot passed to Save.
	Saves []registry.Snapshot

	// FailLoad causes Load to return ErrMockPersister.
	FailLoad bool

	// FailSave causes Save to return ErrMockPersister.
	FailSave bool
}

// NewMockPersister creates a mock persister that loads initial.
func NewMockPersister(initial registry.Snapshot) *MockPersister {
	return &MockPersister{Initial: initial}
}

func (m *MockPersister) Load(_ context.Context) (registry.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailLoad {
		return registry.Snapshot{}, ErrMockPersister
	}
	return m.Initial, nil
}

func (m *MockPersister) Save(_ context.Context, snapshot registry.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave {
		return ErrMockPersister
	}
	m.Saves = append(m.Saves, snapshot)
	return nil
}

// SetFailSave toggles Save failures.
func (m *MockPersister) SetFailSave(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailSave = fail
}

// SaveCount returns how many snapshots were saved.
func (m *MockPersister) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saves)
}

// Last returns the most recently saved snapshot.
func (m *MockPersister) Last() (registry.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Saves) == 0 {
		return registry.Snapshot{}, false
	}
	return m.Saves[len(m.Saves)-1], true
}

func (m *MockPersister) Close() error {
	return nil
}
