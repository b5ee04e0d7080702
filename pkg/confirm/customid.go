package confirm

import (
	"strings"

	"github.com/google/uuid"
)

// Action is a response button on a confirmation prompt.
type Action string

const (
	ActionConfirm Action = "confirm_yes"
	ActionCancel  Action = "confirm_no"
)

const customIDSeparator = ":"

// Valid reports whether a is one of the two prompt actions.
func (a Action) Valid() bool {
	return a == ActionConfirm || a == ActionCancel
}

// NewToken returns a fresh workflow token.
func NewToken() string {
	return uuid.NewString()
}

// CustomID builds the button id for action on the workflow identified by
// token.
func CustomID(action Action, token string) string {
	return string(action) + customIDSeparator + token
}

// ParseCustomID splits a button id built by CustomID. ok is false for ids
// that do not belong to a confirmation prompt.
func ParseCustomID(id string) (action Action, token string, ok bool) {
	head, tail, found := strings.Cut(id, customIDSeparator)
	if !found || tail == "" {
		return "", "", false
	}

	action = Action(head)
	if !action.Valid() {
		return "", "", false
	}

	return action, tail, true
}
