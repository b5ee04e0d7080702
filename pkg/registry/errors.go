package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a required field is empty.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateName is returned by CreatePerson when a person with the
	// same name (case-insensitive) already exists.
	ErrDuplicateName = errors.New("person name already exists")
)

// ValidationError names the required field that was missing. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrValidation, e.Field)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError is returned when a referenced person or report doesn't exist.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return e.Kind + " not found"
	}

	return e.Kind + " not found: " + e.Key
}

// PersistenceWarning reports that a mutation was applied in memory but could
// not be flushed to the persister. The in-memory state remains authoritative.
type PersistenceWarning struct {
	Op  string
	Err error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("persisting after %s: %v", w.Op, w.Err)
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

// IsWarning reports whether err is, or wraps, a *PersistenceWarning. Callers
// use it to treat a mutation as successful despite the failed flush.
func IsWarning(err error) bool {
	var w *PersistenceWarning
	return errors.As(err, &w)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
