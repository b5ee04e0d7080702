// Package classlabel validates the optional class label that disambiguates
// people sharing the same name. Labels are a tier digit followed by a section
// letter, e.g. "2A", drawn from a fixed generated grid.
package classlabel

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MinTier and MaxTier bound the numeric part of a label.
	MinTier = 1
	MaxTier = 3

	// FirstLetter and LastLetter bound the section part of a label.
	FirstLetter = 'A'
	LastLetter  = 'F'

	// MaxSuggestions is the most choices an autocomplete response may carry.
	MaxSuggestions = 25
)

var (
	// ErrInvalidFormat is returned when a label is not a digit followed by a
	// section letter.
	ErrInvalidFormat = errors.New("invalid class format")

	// ErrOutOfRange is returned when a well-formed label is not part of the
	// generated grid.
	ErrOutOfRange = errors.New("class out of range")
)

// The tier digit is matched loosely; tier bounds are enforced by the grid.
var labelPattern = regexp.MustCompile(`^[0-9][A-F]$`)

// Label is a validated, upper-cased class label. The zero value means
// "no label".
type Label string

// String implements fmt.Stringer.
func (l Label) String() string {
	return string(l)
}

// IsZero reports whether no label was given.
func (l Label) IsZero() bool {
	return l == ""
}

// All returns every valid label in grid order (1A, 1B, ..., 3F).
func All() []Label {
	labels := make([]Label, 0, (MaxTier-MinTier+1)*(LastLetter-FirstLetter+1))
	for tier := MinTier; tier <= MaxTier; tier++ {
		for letter := FirstLetter; letter <= LastLetter; letter++ {
			labels = append(labels, Label(strconv.Itoa(tier)+string(letter)))
		}
	}
	return labels
}

// Parse normalizes and validates a raw label. An empty or blank input is not
// an error and yields the zero Label.
func Parse(raw string) (Label, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" {
		return "", nil
	}

	if !labelPattern.MatchString(normalized) {
		return "", ErrInvalidFormat
	}

	if !Valid(Label(normalized)) {
		return "", ErrOutOfRange
	}

	return Label(normalized), nil
}

// Valid reports whether l is a member of the generated grid.
func Valid(l Label) bool {
	for _, candidate := range All() {
		if candidate == l {
			return true
		}
	}
	return false
}

// Suggest returns the labels starting with prefix (case-insensitive), capped
// at limit. A non-positive limit, or one above MaxSuggestions, is clamped to
// MaxSuggestions.
func Suggest(prefix string, limit int) []Label {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	result := make([]Label, 0, limit)
	for _, l := range All() {
		if len(result) == limit {
			break
		}
		if strings.HasPrefix(string(l), prefix) {
			result = append(result, l)
		}
	}
	return result
}
