// Package nop provides the eventstream publisher used when no event backend
// is configured.
package nop

import (
	"context"

	"github.com/papercomputeco/dossier/pkg/eventstream"
)

// Publisher drops every event.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishReport validates input and otherwise does nothing.
func (p *Publisher) PublishReport(_ context.Context, event *eventstream.ReportCreatedEvent) error {
	if event == nil {
		return eventstream.ErrNilReportEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
