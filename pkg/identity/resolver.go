// Package identity resolves a typed name and optional class label to an
// existing person, a new person, or a conflict with an existing person that
// carries a different class label.
package identity

import (
	"errors"
	"strings"

	"github.com/papercomputeco/dossier/pkg/classlabel"
	"github.com/papercomputeco/dossier/pkg/registry"
)

// ErrIncompleteName is returned when the typed name lacks a family name.
var ErrIncompleteName = errors.New("name must include given name and family name")

// Kind classifies a Resolution.
type Kind int

const (
	// KindNew means no matching person exists; FullName should be created.
	KindNew Kind = iota

	// KindExistingSameKey means a person with exactly this (qualified) name
	// exists.
	KindExistingSameKey

	// KindExistingBaseKey means a person with the same base name exists and
	// the submission either carries the same label or none at all.
	KindExistingBaseKey

	// KindConflict means a person with the same base name exists under a
	// different class label.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNew:
		return "new"
	case KindExistingSameKey:
		return "existing_same_key"
	case KindExistingBaseKey:
		return "existing_base_key"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving a typed name.
type Resolution struct {
	Kind Kind

	// Person is the matched person for every kind except KindNew.
	Person registry.Person

	// ExistingLabel is the class label stored in Person's name.
	ExistingLabel classlabel.Label

	// ProposedLabel is the label of the submission.
	ProposedLabel classlabel.Label

	// FullName is the qualified name a new person would be created under.
	FullName string
}

// Lookup is the read-only view of the registry the resolver needs.
type Lookup interface {
	FindByName(name string) (registry.Person, bool)
	ListPeople() []registry.Person
}

// Resolver matches submissions against existing people. It never writes.
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a Resolver over lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve resolves typedName with the given label. A valid label embedded in
// typedName is used when label is zero; a label-shaped suffix that is not
// valid fails with the classlabel error.
func (r *Resolver) Resolve(typedName string, label classlabel.Label) (Resolution, error) {
	typed := strings.TrimSpace(typedName)
	if CountTokens(typed) < 2 {
		return Resolution{}, ErrIncompleteName
	}

	base, embedded, err := ParseTypedName(typed)
	if err != nil {
		return Resolution{}, err
	}

	proposed := label
	if proposed.IsZero() {
		proposed = embedded
	}
	fullName := QualifiedName(base, proposed)

	// The name as typed wins, unless it names a person stored under a
	// different label than the one given.
	if p, ok := r.lookup.FindByName(typed); ok {
		res := matched(p, proposed, fullName, KindExistingSameKey)
		if res.Kind != KindConflict {
			res.FullName = p.Name
		}
		return res, nil
	}

	if p, ok := r.lookup.FindByName(fullName); ok {
		return matched(p, proposed, p.Name, KindExistingSameKey), nil
	}

	match, ok := r.findByBase(base, proposed)
	if !ok {
		return Resolution{
			Kind:          KindNew,
			ProposedLabel: proposed,
			FullName:      fullName,
		}, nil
	}

	return matched(match, proposed, fullName, KindExistingBaseKey), nil
}

// matched builds the Resolution for an existing person p. A stored label that
// differs from a proposed one turns the match into a conflict.
func matched(p registry.Person, proposed classlabel.Label, fullName string, kind Kind) Resolution {
	_, stored := SplitLabel(p.Name)
	if !proposed.IsZero() && stored != proposed {
		kind = KindConflict
	}
	return Resolution{
		Kind:          kind,
		Person:        p,
		ExistingLabel: stored,
		ProposedLabel: proposed,
		FullName:      fullName,
	}
}

// findByBase returns the person whose name, with any label stripped, equals
// base. An unlabelled person is preferred when the submission has no label;
// otherwise the earliest match wins.
func (r *Resolver) findByBase(base string, proposed classlabel.Label) (registry.Person, bool) {
	var (
		first registry.Person
		found bool
	)

	for _, p := range r.lookup.ListPeople() {
		pBase, pLabel := SplitLabel(p.Name)
		if !strings.EqualFold(pBase, base) {
			continue
		}
		if proposed.IsZero() && pLabel.IsZero() {
			return p, true
		}
		if !found {
			first, found = p, true
		}
	}

	return first, found
}
