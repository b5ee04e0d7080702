package bot

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/dossier/pkg/classlabel"
	"github.com/papercomputeco/dossier/pkg/confirm"
	"github.com/papercomputeco/dossier/pkg/identity"
	"github.com/papercomputeco/dossier/pkg/registry"
)

// embedColor is the accent colour of every embed.
const embedColor = 0x5865f2

const (
	msgConfirmed      = "✅ Confirmed! Saving report..."
	msgCancelled      = "❌ Operation cancelled."
	msgTimedOut       = "⏰ Time expired. Operation cancelled."
	msgInvalidFormat  = "❌ Invalid class format. Use a number (1-3) followed by a letter (A-F), e.g. 1A, 2B, 3C."
	msgOutOfRange     = "❌ That class does not exist. Classes go from 1A to 3F."
	msgIncompleteName = "❌ Enter both the given name and the family name (e.g. Mario Rossi)."
	msgSaveFailed     = "❌ Something went wrong while saving the report."
	msgInfoFailed     = "❌ Something went wrong while fetching the information."
	msgCommandFailed  = "Something went wrong while running the command."

	labelConfirm = "Yes, save with the different class"
	labelCancel  = "No, cancel"
)

func conflictPrompt(res identity.Resolution) string {
	base, _ := identity.SplitLabel(res.Person.Name)
	return fmt.Sprintf(
		"⚠️ **Warning**: a person named **%s** already exists in a different class (**%s**). Do you still want to save them with class **%s**?",
		base, displayLabel(res.ExistingLabel), displayLabel(res.ProposedLabel),
	)
}

func displayLabel(l classlabel.Label) string {
	if l.IsZero() {
		return "none"
	}
	return l.String()
}

func missingField(field string) string {
	return fmt.Sprintf("❌ The %s is required.", field)
}

func notFoundMessage(name string) string {
	return fmt.Sprintf("❌ No information found for **%s**.", name)
}

func noReportsMessage(name string) string {
	return fmt.Sprintf("ℹ️ **%s** is in the database but has no reports yet.", name)
}

// reportEmbed renders a committed report.
func reportEmbed(outcome ReportOutcome) Embed {
	e := Embed{
		Color:       embedColor,
		Title:       "✅ Report added",
		Description: fmt.Sprintf("The fact was added for **%s**", outcome.Person.Name),
		Fields: []Field{
			{Name: "Fact", Value: outcome.Report.Fact},
			{Name: "Reported by", Value: outcome.Report.ReportedBy, Inline: true},
		},
		Timestamp: outcome.Report.CreatedAt,
	}
	if !outcome.Class.IsZero() {
		e.Fields = append(e.Fields, Field{Name: "Class", Value: outcome.Class.String(), Inline: true})
	}
	return e
}

// infoEmbed renders a person's reports, numbered in creation order.
func infoEmbed(outcome InfoOutcome) Embed {
	e := Embed{
		Color:       embedColor,
		Title:       "📋 About " + outcome.Person.Name,
		Description: fmt.Sprintf("Every report collected about **%s**:", outcome.Person.Name),
		Footer:      fmt.Sprintf("Total reports: %d", len(outcome.Reports)),
	}
	for i, r := range outcome.Reports {
		e.Fields = append(e.Fields, Field{
			Name: fmt.Sprintf("Report #%d", i+1),
			Value: fmt.Sprintf("**Fact:** %s\n**Reported by:** %s\n**Date:** %s",
				r.Fact, r.ReportedBy, r.CreatedAt.Format("02/01/2006")),
		})
		if r.CreatedAt.After(e.Timestamp) {
			e.Timestamp = r.CreatedAt
		}
	}
	return e
}

// errorKind names err for metrics.
func errorKind(err error) string {
	var verr registry.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, classlabel.ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, classlabel.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, identity.ErrIncompleteName):
		return "incomplete_name"
	case registry.IsNotFound(err):
		return "not_found"
	case errors.Is(err, confirm.ErrCancelled):
		return "cancelled"
	case errors.Is(err, confirm.ErrTimeout):
		return "timeout"
	default:
		return "internal"
	}
}

// userMessage maps a report or info error to the text shown to the invoker,
// or fallback when it has no dedicated text.
func userMessage(err error, fallback string) string {
	var verr registry.ValidationError
	switch {
	case errors.As(err, &verr):
		return missingField(verr.Field)
	case errors.Is(err, classlabel.ErrInvalidFormat):
		return msgInvalidFormat
	case errors.Is(err, classlabel.ErrOutOfRange):
		return msgOutOfRange
	case errors.Is(err, identity.ErrIncompleteName):
		return msgIncompleteName
	default:
		return fallback
	}
}
