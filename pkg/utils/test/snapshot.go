package testutils

import (
	"time"

	"github.com/papercomputeco/dossier/pkg/registry"
)

// SampleSnapshot returns a small snapshot with two people and three reports.
func SampleSnapshot() registry.Snapshot {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return registry.Snapshot{
		People: []registry.Person{
			{ID: "p-1", Name: "Mario Rossi (2A)"},
			{ID: "p-2", Name: "Giulia Bianchi"},
		},
		Reports: []registry.Report{
			{ID: "r-1", PersonID: "p-1", Fact: "plays the violin", ReportedBy: "anna", CreatedAt: base},
			{ID: "r-2", PersonID: "p-2", Fact: "runs marathons", ReportedBy: "luca", CreatedAt: base.Add(time.Minute)},
			{ID: "r-3", PersonID: "p-1", Fact: "speaks Japanese", ReportedBy: "anna", CreatedAt: base.Add(2 * time.Minute)},
		},
	}
}
