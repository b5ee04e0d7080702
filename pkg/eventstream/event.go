package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/dossier/pkg/registry"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeReportCreated is emitted after a report is committed.
	EventTypeReportCreated = "dossier.report.created"
)

// Origins of a report.
const (
	SourceBot       = "bot"
	SourceDashboard = "dashboard"
)

// ReportCreatedEvent is a transport-neutral event payload for a committed report.
type ReportCreatedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        string          `json:"source"`
	Person        registry.Person `json:"person"`
	PersonCreated bool            `json:"person_created"`
	Report        registry.Report `json:"report"`
	Resolution    string          `json:"resolution,omitempty"`
}

// NewReportCreatedEvent fills in the envelope fields for a committed report.
func NewReportCreatedEvent(source string, person registry.Person, created bool, report registry.Report, resolution string) *ReportCreatedEvent {
	return &ReportCreatedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeReportCreated,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Person:        person,
		PersonCreated: created,
		Report:        report,
		Resolution:    resolution,
	}
}
