package registry

import (
	"context"
	"time"
)

// Person is a named identity that reports accumulate against. The name may
// carry a trailing class label, e.g. "Mario Rossi (2A)".
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Report is one fact recorded about a Person.
type Report struct {
	ID         string    `json:"id"`
	PersonID   string    `json:"personId"`
	Fact       string    `json:"fact"`
	ReportedBy string    `json:"reportedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PersonWithReports is a Person together with every Report that references it.
type PersonWithReports struct {
	Person
	Reports []Report `json:"reports"`
}

// Snapshot is the full persisted state: both record sets, written and read
// as a whole.
type Snapshot struct {
	People  []Person `json:"people"`
	Reports []Report `json:"reports"`
}

// Persister loads and saves the full registry state. Save has whole-set
// overwrite semantics.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
