// Package registry owns the Person and Report record sets. It keeps the full
// state in memory, serialises mutations, and flushes the whole state to a
// Persister after every successful mutation.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry is the in-memory identity and fact store.
type Registry struct {
	// mu guards people, reports and lastCreatedAt. Mutations hold the write
	// lock until the persister returns, so readers never observe a change
	// that has not been flushed (or failed to flush).
	mu sync.RWMutex

	// people and reports are kept in insertion order.
	people  []Person
	reports []Report

	lastCreatedAt time.Time

	persister Persister
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Registry created with New.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source used for Report.CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the id source. Defaults to random UUIDs.
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// New creates a Registry and hydrates it from the persister. A nil persister
// keeps the state in memory only.
//
// If loading fails the registry starts empty and is returned together with a
// *PersistenceWarning, so callers can log and carry on.
func New(ctx context.Context, persister Persister, opts ...Option) (*Registry, error) {
	r := &Registry{
		persister: persister,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	if persister == nil {
		return r, nil
	}

	snapshot, err := persister.Load(ctx)
	if err != nil {
		r.logger.Error("loading registry state", zap.Error(err))
		return r, &PersistenceWarning{Op: "load", Err: err}
	}

	r.importSnapshot(snapshot)
	r.logger.Info("registry state loaded",
		zap.Int("people", len(r.people)),
		zap.Int("reports", len(r.reports)),
	)

	return r, nil
}

// importSnapshot replaces the in-memory state. Reports whose person is
// missing are dropped.
func (r *Registry) importSnapshot(snapshot Snapshot) {
	people := make([]Person, 0, len(snapshot.People))
	known := make(map[string]bool, len(snapshot.People))
	for _, p := range snapshot.People {
		if p.ID == "" || known[p.ID] {
			continue
		}
		known[p.ID] = true
		people = append(people, p)
	}

	reports := make([]Report, 0, len(snapshot.Reports))
	for _, rep := range snapshot.Reports {
		if !known[rep.PersonID] {
			r.logger.Warn("dropping report for unknown person",
				zap.String("report_id", rep.ID),
				zap.String("person_id", rep.PersonID),
			)
			continue
		}
		reports = append(reports, rep)
		if rep.CreatedAt.After(r.lastCreatedAt) {
			r.lastCreatedAt = rep.CreatedAt
		}
	}

	r.people = people
	r.reports = reports
}

// exportSnapshot copies the current state. Callers must hold mu.
func (r *Registry) exportSnapshot() Snapshot {
	return Snapshot{
		People:  append([]Person{}, r.people...),
		Reports: append([]Report{}, r.reports...),
	}
}

// persist flushes the full state. Callers must hold the write lock.
func (r *Registry) persist(ctx context.Context, op string) error {
	if r.persister == nil {
		return nil
	}

	if err := r.persister.Save(ctx, r.exportSnapshot()); err != nil {
		r.logger.Error("persisting registry state",
			zap.String("op", op),
			zap.Error(err),
		)
		return &PersistenceWarning{Op: op, Err: err}
	}

	return nil
}

// FindByName returns the person whose name matches exactly, ignoring case.
func (r *Registry) FindByName(name string) (Person, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findByNameLocked(name)
}

func (r *Registry) findByNameLocked(name string) (Person, bool) {
	for _, p := range r.people {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Person{}, false
}

// GetPerson returns the person with the given id.
func (r *Registry) GetPerson(id string) (Person, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.personIndex(id)
	if idx < 0 {
		return Person{}, false
	}
	return r.people[idx], true
}

func (r *Registry) personIndex(id string) int {
	for i, p := range r.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// CreatePerson adds a new person. It fails with a ValidationError if name is
// blank and with ErrDuplicateName if the name is already taken.
func (r *Registry) CreatePerson(ctx context.Context, name string) (Person, error) {
	if strings.TrimSpace(name) == "" {
		return Person{}, ValidationError{Field: "name"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.findByNameLocked(name); ok {
		return Person{}, ErrDuplicateName
	}

	p := r.insertPersonLocked(name)
	return p, r.persist(ctx, "create person")
}

// FindOrCreatePerson returns the person named name, creating it if needed.
// Lookup and insert happen under one lock, so concurrent callers for the same
// name all receive the same person. The bool reports whether it was created.
func (r *Registry) FindOrCreatePerson(ctx context.Context, name string) (Person, bool, error) {
	if strings.TrimSpace(name) == "" {
		return Person{}, false, ValidationError{Field: "name"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.findByNameLocked(name); ok {
		return p, false, nil
	}

	p := r.insertPersonLocked(name)
	return p, true, r.persist(ctx, "create person")
}

func (r *Registry) insertPersonLocked(name string) Person {
	p := Person{ID: r.newID(), Name: name}
	r.people = append(r.people, p)

	r.logger.Debug("person created",
		zap.String("person_id", p.ID),
		zap.String("name", p.Name),
	)

	return p
}

// CreateReport records a fact about an existing person.
func (r *Registry) CreateReport(ctx context.Context, personID, fact, reportedBy string) (Report, error) {
	switch {
	case strings.TrimSpace(personID) == "":
		return Report{}, ValidationError{Field: "personId"}
	case strings.TrimSpace(fact) == "":
		return Report{}, ValidationError{Field: "fact"}
	case strings.TrimSpace(reportedBy) == "":
		return Report{}, ValidationError{Field: "reportedBy"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.personIndex(personID) < 0 {
		return Report{}, NotFoundError{Kind: "person", Key: personID}
	}

	createdAt := r.now()
	if createdAt.Before(r.lastCreatedAt) {
		createdAt = r.lastCreatedAt
	}
	r.lastCreatedAt = createdAt

	rep := Report{
		ID:         r.newID(),
		PersonID:   personID,
		Fact:       fact,
		ReportedBy: reportedBy,
		CreatedAt:  createdAt,
	}
	r.reports = append(r.reports, rep)

	r.logger.Debug("report created",
		zap.String("report_id", rep.ID),
		zap.String("person_id", personID),
	)

	return rep, r.persist(ctx, "create report")
}

// ReportsFor returns the reports of a person ordered by creation time.
func (r *Registry) ReportsFor(personID string) []Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.reportsForLocked(personID)
}

func (r *Registry) reportsForLocked(personID string) []Report {
	result := []Report{}
	for _, rep := range r.reports {
		if rep.PersonID == personID {
			result = append(result, rep)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// ListPeopleWithReports returns every person, in insertion order, with their
// reports.
func (r *Registry) ListPeopleWithReports() []PersonWithReports {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]PersonWithReports, 0, len(r.people))
	for _, p := range r.people {
		result = append(result, PersonWithReports{
			Person:  p,
			Reports: r.reportsForLocked(p.ID),
		})
	}

	return result
}

// ListPeople returns every person in insertion order.
func (r *Registry) ListPeople() []Person {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Person{}, r.people...)
}

// ListReports returns every report in insertion order.
func (r *Registry) ListReports() []Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Report{}, r.reports...)
}

// DeletePerson removes a person and every report referencing it. It returns
// false if no such person exists.
func (r *Registry) DeletePerson(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.personIndex(id)
	if idx < 0 {
		return false, nil
	}
	person := r.people[idx]
	r.people = append(r.people[:idx], r.people[idx+1:]...)

	kept := r.reports[:0]
	removed := 0
	for _, rep := range r.reports {
		if rep.PersonID == id {
			removed++
			continue
		}
		kept = append(kept, rep)
	}
	r.reports = kept

	r.logger.Info("person deleted",
		zap.String("person_id", id),
		zap.String("name", person.Name),
		zap.Int("reports_removed", removed),
	)

	return true, r.persist(ctx, "delete person")
}

// DeleteReport removes a single report. It returns false if no such report
// exists.
func (r *Registry) DeleteReport(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rep := range r.reports {
		if rep.ID != id {
			continue
		}
		r.reports = append(r.reports[:i], r.reports[i+1:]...)
		r.logger.Info("report deleted",
			zap.String("report_id", id),
			zap.String("person_id", rep.PersonID),
		)
		return true, r.persist(ctx, "delete report")
	}

	return false, nil
}

// Count returns the number of people and reports.
func (r *Registry) Count() (people int, reports int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.people), len(r.reports)
}
