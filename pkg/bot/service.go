// Package bot implements the report and info commands on top of the registry,
// the identity resolver and the confirmation workflow, plus the dispatcher
// that connects them to a chat Gateway.
package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/classlabel"
	"github.com/papercomputeco/dossier/pkg/confirm"
	"github.com/papercomputeco/dossier/pkg/eventstream"
	"github.com/papercomputeco/dossier/pkg/eventstream/worker"
	"github.com/papercomputeco/dossier/pkg/identity"
	"github.com/papercomputeco/dossier/pkg/metrics"
	"github.com/papercomputeco/dossier/pkg/registry"
)

// MaxNameSuggestions caps name autocomplete results.
const MaxNameSuggestions = 25

// ReportRequest is a report submission from a chat user.
type ReportRequest struct {
	Name         string
	Fact         string
	Class        string
	SubmitterID  string
	SubmitterTag string
}

// reportedBy is the attribution stored on the report.
func (r ReportRequest) reportedBy() string {
	if strings.TrimSpace(r.SubmitterTag) != "" {
		return r.SubmitterTag
	}
	return r.SubmitterID
}

// ReportOutcome describes a committed report.
type ReportOutcome struct {
	Person        registry.Person
	PersonCreated bool
	Report        registry.Report
	Class         classlabel.Label
	Resolution    identity.Resolution

	// Confirmation is StateIdle when no confirmation was needed.
	Confirmation confirm.State

	// Warning is set when the report was stored in memory but could not be
	// flushed to storage.
	Warning error
}

// InfoOutcome is a person together with their reports.
type InfoOutcome struct {
	Person  registry.Person
	Reports []registry.Report
}

// Empty reports whether the person has no reports yet.
func (o InfoOutcome) Empty() bool {
	return len(o.Reports) == 0
}

// Confirmer asks the submitter whether a conflicting report should be stored
// under the proposed class label. It returns the terminal workflow state.
type Confirmer interface {
	Confirm(ctx context.Context, req ReportRequest, res identity.Resolution) (confirm.State, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, req ReportRequest, res identity.Resolution) (confirm.State, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, req ReportRequest, res identity.Resolution) (confirm.State, error) {
	return f(ctx, req, res)
}

// EventSink accepts report events for asynchronous publishing.
type EventSink interface {
	Enqueue(job worker.Job) bool
}

// Service orchestrates the commands. It holds no platform state and is safe
// for concurrent use.
type Service struct {
	registry *registry.Registry
	resolver *identity.Resolver
	events   EventSink
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvents publishes a ReportCreatedEvent for every committed report.
func WithEvents(sink EventSink) ServiceOption {
	return func(s *Service) {
		s.events = sink
	}
}

// WithMetrics records counters for committed reports.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a Service over reg.
func NewService(reg *registry.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		registry: reg,
		resolver: identity.NewResolver(reg),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the underlying registry.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// ValidateReport checks required fields, the class label and the name shape
// of req without touching the registry. It returns the normalised label.
func (s *Service) ValidateReport(req ReportRequest) (classlabel.Label, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "", registry.ValidationError{Field: "name"}
	case strings.TrimSpace(req.Fact) == "":
		return "", registry.ValidationError{Field: "fact"}
	case strings.TrimSpace(req.reportedBy()) == "":
		return "", registry.ValidationError{Field: "reportedBy"}
	}

	label, err := classlabel.Parse(req.Class)
	if err != nil {
		return "", fmt.Errorf("class %q: %w", req.Class, err)
	}

	if identity.CountTokens(req.Name) < 2 {
		return "", identity.ErrIncompleteName
	}
	if _, _, err := identity.ParseTypedName(req.Name); err != nil {
		return "", fmt.Errorf("name %q: %w", req.Name, err)
	}

	return label, nil
}

// SubmitReport validates req, resolves the person and stores the report.
// Conflicting class labels are put to confirmer; the call returns once the
// confirmation reaches a terminal state. Cancellation and timeout return
// confirm.ErrCancelled and confirm.ErrTimeout with nothing written.
//
// A *registry.PersistenceWarning is not returned as an error; it is reported
// in ReportOutcome.Warning.
func (s *Service) SubmitReport(ctx context.Context, req ReportRequest, confirmer Confirmer) (ReportOutcome, error) {
	label, err := s.ValidateReport(req)
	if err != nil {
		return ReportOutcome{}, err
	}

	res, err := s.resolver.Resolve(req.Name, label)
	if err != nil {
		return ReportOutcome{}, err
	}

	outcome := ReportOutcome{
		Class:        res.ProposedLabel,
		Resolution:   res,
		Confirmation: confirm.StateIdle,
	}

	s.logger.Debug("identity resolved",
		zap.String("name", req.Name),
		zap.String("kind", res.Kind.String()),
		zap.String("full_name", res.FullName),
	)

	switch res.Kind {
	case identity.KindExistingSameKey, identity.KindExistingBaseKey:
		outcome.Person = res.Person

	case identity.KindNew:
		if err := s.findOrCreate(ctx, res.FullName, &outcome); err != nil {
			return outcome, err
		}

	case identity.KindConflict:
		if confirmer == nil {
			return outcome, fmt.Errorf("conflicting class for %q: %w", res.Person.Name, confirm.ErrCancelled)
		}

		state, err := confirmer.Confirm(ctx, req, res)
		outcome.Confirmation = state
		if s.metrics != nil && state.Terminal() {
			s.metrics.RecordConfirmation(state.String())
		}
		if state != confirm.StateCommitted {
			if err == nil {
				err = state.Err()
			}
			return outcome, err
		}

		if err := s.findOrCreate(ctx, res.FullName, &outcome); err != nil {
			return outcome, err
		}
	}

	_, outcome.Class = identity.SplitLabel(outcome.Person.Name)

	report, err := s.registry.CreateReport(ctx, outcome.Person.ID, req.Fact, req.reportedBy())
	if err != nil && !registry.IsWarning(err) {
		return outcome, err
	}
	outcome.Report = report
	if err != nil {
		outcome.Warning = err
	}

	s.committed(eventstream.SourceBot, outcome)

	return outcome, nil
}

func (s *Service) findOrCreate(ctx context.Context, name string, outcome *ReportOutcome) error {
	person, created, err := s.registry.FindOrCreatePerson(ctx, name)
	if err != nil && !registry.IsWarning(err) {
		return err
	}
	outcome.Person = person
	outcome.PersonCreated = created
	if err != nil {
		outcome.Warning = err
	}
	return nil
}

// RecordReport stores a report submitted through the dashboard. The person is
// matched by exact name, then by name without its class suffix, and created
// under personName otherwise. There is no confirmation step.
func (s *Service) RecordReport(ctx context.Context, personName, fact, reportedBy string) (ReportOutcome, error) {
	switch {
	case strings.TrimSpace(personName) == "":
		return ReportOutcome{}, registry.ValidationError{Field: "personName"}
	case strings.TrimSpace(fact) == "":
		return ReportOutcome{}, registry.ValidationError{Field: "fact"}
	case strings.TrimSpace(reportedBy) == "":
		return ReportOutcome{}, registry.ValidationError{Field: "reportedBy"}
	}

	outcome := ReportOutcome{Confirmation: confirm.StateIdle}

	person, ok := s.registry.FindByName(personName)
	if !ok {
		person, ok = s.registry.FindByName(identity.StripSuffix(personName))
	}
	if ok {
		outcome.Person = person
	} else if err := s.findOrCreate(ctx, strings.TrimSpace(personName), &outcome); err != nil {
		return outcome, err
	}
	_, outcome.Class = identity.SplitLabel(outcome.Person.Name)

	report, err := s.registry.CreateReport(ctx, outcome.Person.ID, fact, reportedBy)
	if err != nil && !registry.IsWarning(err) {
		return outcome, err
	}
	outcome.Report = report
	if err != nil {
		outcome.Warning = err
	}

	s.committed(eventstream.SourceDashboard, outcome)

	return outcome, nil
}

func (s *Service) committed(source string, outcome ReportOutcome) {
	s.logger.Info("report committed",
		zap.String("source", source),
		zap.String("person_id", outcome.Person.ID),
		zap.String("person", outcome.Person.Name),
		zap.String("report_id", outcome.Report.ID),
		zap.Bool("person_created", outcome.PersonCreated),
	)

	if s.metrics != nil {
		s.metrics.IncrementReportCreated(source, outcome.PersonCreated)
		if outcome.Warning != nil {
			s.metrics.PersistenceWarnings.Inc()
		}
	}

	if s.events == nil {
		return
	}

	resolution := ""
	if source == eventstream.SourceBot {
		resolution = outcome.Resolution.Kind.String()
	}
	event := eventstream.NewReportCreatedEvent(source, outcome.Person, outcome.PersonCreated, outcome.Report, resolution)
	if !s.events.Enqueue(worker.Job{Event: event}) {
		s.logger.Warn("report event dropped", zap.String("report_id", outcome.Report.ID))
	}
}

// Info returns the person whose name matches exactly, ignoring case, with
// their reports in creation order. There is no fallback on the base name.
func (s *Service) Info(_ context.Context, name string) (InfoOutcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return InfoOutcome{}, registry.ValidationError{Field: "name"}
	}

	person, ok := s.registry.FindByName(name)
	if !ok {
		return InfoOutcome{}, registry.NotFoundError{Kind: "person", Key: name}
	}

	return InfoOutcome{
		Person:  person,
		Reports: s.registry.ReportsFor(person.ID),
	}, nil
}

// SuggestNames returns up to MaxNameSuggestions stored names containing
// fragment, ignoring case.
func (s *Service) SuggestNames(fragment string) []string {
	fragment = strings.ToLower(strings.TrimSpace(fragment))

	names := []string{}
	for _, p := range s.registry.ListPeople() {
		if len(names) == MaxNameSuggestions {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), fragment) {
			names = append(names, p.Name)
		}
	}
	return names
}

// SuggestClasses returns the class labels starting with prefix.
func (s *Service) SuggestClasses(prefix string) []classlabel.Label {
	return classlabel.Suggest(prefix, classlabel.MaxSuggestions)
}
