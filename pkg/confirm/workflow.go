// Package confirm implements the bounded-time confirmation exchange used when
// a report targets a person whose stored class label differs from the one
// submitted.
//
// A Workflow starts in StateIdle, moves to StateAwaiting on Begin and leaves
// it exactly once: to StateCommitted or StateAborted on a click from the
// submitter, or to StateExpired when the deadline passes. Clicks from other
// users never move it and never extend the deadline.
package confirm

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is how long a prompt waits for the submitter.
const DefaultTimeout = 60 * time.Second

// Click is a button press on a confirmation prompt.
type Click struct {
	MessageID string
	CustomID  string
	UserID    string
}

// Workflow is a single confirmation exchange. It is not reusable.
type Workflow struct {
	mu sync.Mutex

	state       State
	submitterID string
	token       string
	deadline    time.Time

	clock   Clock
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(w *Workflow) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithToken fixes the workflow token instead of generating one.
func WithToken(token string) Option {
	return func(w *Workflow) {
		if token != "" {
			w.token = token
		}
	}
}

// New creates an idle workflow that only accepts responses from submitterID.
func New(submitterID string, opts ...Option) *Workflow {
	w := &Workflow{
		state:       StateIdle,
		submitterID: submitterID,
		clock:       SystemClock(),
		timeout:     DefaultTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.token == "" {
		w.token = NewToken()
	}

	return w
}

// Token identifies this workflow inside button custom ids.
func (w *Workflow) Token() string {
	return w.token
}

// SubmitterID is the only user whose clicks are accepted.
func (w *Workflow) SubmitterID() string {
	return w.submitterID
}

// ConfirmID is the custom id of the confirm button.
func (w *Workflow) ConfirmID() string {
	return CustomID(ActionConfirm, w.token)
}

// CancelID is the custom id of the cancel button.
func (w *Workflow) CancelID() string {
	return CustomID(ActionCancel, w.token)
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Deadline returns the instant after which responses are ignored. It is zero
// before Begin.
func (w *Workflow) Deadline() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deadline
}

// Begin moves the workflow to StateAwaiting and starts the deadline. Call it
// once the prompt has been sent.
func (w *Workflow) Begin() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateIdle {
		return w.deadline, ErrAlreadyStarted
	}

	w.state = StateAwaiting
	w.deadline = w.clock.Now().Add(w.timeout)

	w.logger.Debug("confirmation started",
		zap.String("token", w.token),
		zap.String("submitter_id", w.submitterID),
		zap.Time("deadline", w.deadline),
	)

	return w.deadline, nil
}

// Accepts reports whether c is a response from the submitter to this
// workflow's prompt.
func (w *Workflow) Accepts(c Click) bool {
	if c.UserID != w.submitterID {
		return false
	}

	_, token, ok := ParseCustomID(c.CustomID)
	return ok && token == w.token
}

// Handle applies c. The bool reports whether the click caused a transition.
// A click that arrives at or after the deadline expires the workflow instead
// of committing or aborting it.
func (w *Workflow) Handle(c Click) (State, bool) {
	if !w.Accepts(c) {
		w.logger.Debug("ignoring click",
			zap.String("token", w.token),
			zap.String("user_id", c.UserID),
		)
		return w.State(), false
	}

	action, _, _ := ParseCustomID(c.CustomID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateAwaiting {
		return w.state, false
	}

	if !w.clock.Now().Before(w.deadline) {
		return w.transitionLocked(StateExpired), true
	}

	if action == ActionConfirm {
		return w.transitionLocked(StateCommitted), true
	}
	return w.transitionLocked(StateAborted), true
}

// Expire moves an awaiting workflow to StateExpired.
func (w *Workflow) Expire() (State, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateAwaiting {
		return w.state, false
	}
	return w.transitionLocked(StateExpired), true
}

func (w *Workflow) transitionLocked(to State) State {
	w.logger.Info("confirmation finished",
		zap.String("token", w.token),
		zap.String("from", w.state.String()),
		zap.String("to", to.String()),
	)
	w.state = to
	return to
}

// Await blocks until the workflow reaches a terminal state, feeding it every
// click received on clicks. The deadline timer or ctx cancellation expire it.
// The returned error is nil for StateCommitted, ErrCancelled for StateAborted
// and ErrTimeout (or the context error) for StateExpired.
func (w *Workflow) Await(ctx context.Context, clicks <-chan Click) (State, error) {
	w.mu.Lock()
	state, deadline := w.state, w.deadline
	w.mu.Unlock()

	switch {
	case state == StateIdle:
		return state, ErrNotStarted
	case state.Terminal():
		return state, state.Err()
	}

	timer := w.clock.After(deadline.Sub(w.clock.Now()))

	for {
		select {
		case <-ctx.Done():
			state, _ = w.Expire()
			if state == StateExpired {
				return state, ctx.Err()
			}
			return state, state.Err()

		case <-timer:
			state, _ = w.Expire()
			return state, state.Err()

		case c, ok := <-clicks:
			if !ok {
				clicks = nil
				continue
			}
			if state, moved := w.Handle(c); moved {
				return state, state.Err()
			}
		}
	}
}
