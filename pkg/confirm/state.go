package confirm

import "errors"

var (
	// ErrTimeout is returned when the deadline elapsed without a qualifying
	// response.
	ErrTimeout = errors.New("confirmation timed out")

	// ErrCancelled is returned when the submitter declined.
	ErrCancelled = errors.New("confirmation cancelled")

	// ErrAlreadyStarted is returned by Begin on a workflow that has left
	// StateIdle.
	ErrAlreadyStarted = errors.New("confirmation already started")

	// ErrNotStarted is returned by Await before Begin.
	ErrNotStarted = errors.New("confirmation not started")
)

// State is the position of a Workflow.
type State int

const (
	StateIdle State = iota
	StateAwaiting
	StateCommitted
	StateAborted
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting_confirmation"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateAborted || s == StateExpired
}

// Err maps a terminal state to its error. Committed and non-terminal states
// return nil.
func (s State) Err() error {
	switch s {
	case StateAborted:
		return ErrCancelled
	case StateExpired:
		return ErrTimeout
	default:
		return nil
	}
}
