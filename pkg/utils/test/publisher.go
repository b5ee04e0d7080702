package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/dossier/pkg/eventstream"
)

// ErrMockPublisher is returned by MockPublisher when Fail is set.
var ErrMockPublisher = errors.New("mock publisher failure")

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ReportCreatedEvent
	closed bool

	// Fail causes PublishReport to return ErrMockPublisher.
	Fail bool
}

// NewMockPublisher creates an empty recording publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishReport(_ context.Context, event *eventstream.ReportCreatedEvent) error {
	if event == nil {
		return eventstream.ErrNilReportEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return ErrMockPublisher
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of the published events.
func (m *MockPublisher) Events() []*eventstream.ReportCreatedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.ReportCreatedEvent{}, m.events...)
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
