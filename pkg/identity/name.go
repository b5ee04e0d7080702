package identity

import (
	"regexp"
	"strings"

	"github.com/papercomputeco/dossier/pkg/classlabel"
)

var (
	// suffixPattern matches a trailing parenthesised suffix such as " (2A)".
	suffixPattern = regexp.MustCompile(`\s*\(([^)]*)\)$`)

	// labelShape matches a suffix that was meant as a class label, valid or
	// not: a digit followed by a letter.
	labelShape = regexp.MustCompile(`^\s*[0-9][A-Za-z]\s*$`)
)

// StripSuffix removes any trailing parenthesised suffix from name.
func StripSuffix(name string) string {
	return strings.TrimSpace(suffixPattern.ReplaceAllString(name, ""))
}

// SplitLabel separates a stored display name into its base name and the class
// label encoded in its trailing parentheses. Only a valid label is split off;
// any other suffix stays part of the base name.
func SplitLabel(name string) (string, classlabel.Label) {
	name = strings.TrimSpace(name)

	m := suffixPattern.FindStringSubmatch(name)
	if m == nil {
		return name, ""
	}

	label, err := classlabel.Parse(m[1])
	if err != nil || label.IsZero() {
		return name, ""
	}

	return StripSuffix(name), label
}

// ParseTypedName splits a name typed by a user like SplitLabel, but fails
// with the classlabel error when the suffix has the shape of a label and is
// not a valid one.
func ParseTypedName(name string) (string, classlabel.Label, error) {
	name = strings.TrimSpace(name)

	if m := suffixPattern.FindStringSubmatch(name); m != nil && labelShape.MatchString(m[1]) {
		if _, err := classlabel.Parse(m[1]); err != nil {
			return "", "", err
		}
	}

	base, label := SplitLabel(name)
	return base, label, nil
}

// QualifiedName appends the label to base in parentheses, or returns base
// unchanged when no label is given.
func QualifiedName(base string, label classlabel.Label) string {
	if label.IsZero() {
		return base
	}
	return base + " (" + label.String() + ")"
}

// CountTokens returns the number of whitespace-separated tokens in name,
// ignoring any trailing parenthesised suffix.
func CountTokens(name string) int {
	return len(strings.Fields(StripSuffix(name)))
}
