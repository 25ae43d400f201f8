// Package submit holds the final submission gate: the four-step validator,
// the deterministic archive file name, and the submitter that drives the
// render-and-upload cycle.
package submit

import (
	"fmt"
	"strings"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/progress"
)

// Stage identifies which validation step rejected the submission.
type Stage int

const (
	StageProjectInfo Stage = iota + 1
	StageItems
	StageNotes
	StageSignoff
)

// Failure is a rejected submission: a user-fixable message plus the
// navigation step the UI should move to.
type Failure struct {
	Stage     Stage
	Message   string
	StepIndex int
}

func (f *Failure) Error() string { return f.Message }

// Validate runs the submission checks in fixed order, stopping at the first
// failure: project info, item completion, non-compliance notes, sign-off.
// It runs independently of per-step navigation gating so a record restored
// into a bad state still cannot submit. Returns nil when submission may
// proceed.
func Validate(eng *progress.Engine) *Failure {
	if missing := eng.MissingProjectFields(); len(missing) > 0 {
		return &Failure{
			Stage:     StageProjectInfo,
			Message:   fmt.Sprintf("missing required project information: %s", strings.Join(missing, ", ")),
			StepIndex: catalog.StepIndexOf(catalog.StepProject),
		}
	}

	if incomplete := eng.IncompleteItems(); len(incomplete) > 0 {
		first := incomplete[0]
		return &Failure{
			Stage: StageItems,
			Message: fmt.Sprintf("%d item(s) remaining; first incomplete: %q in %s",
				len(incomplete), first.ItemLabel, first.SectionTitle),
			StepIndex: catalog.StepIndexOf(first.SectionID),
		}
	}

	if missing := eng.NonCompliantWithoutNotes(); len(missing) > 0 {
		first := missing[0]
		return &Failure{
			Stage: StageNotes,
			Message: fmt.Sprintf("non-compliant item %q in %s requires notes",
				first.ItemLabel, first.SectionTitle),
			StepIndex: catalog.StepIndexOf(first.SectionID),
		}
	}

	if !eng.SignoffComplete() {
		return &Failure{
			Stage:     StageSignoff,
			Message:   "project manager sign-off incomplete: name, signature, and date are required",
			StepIndex: catalog.StepIndexOf(catalog.StepSignoff),
		}
	}

	return nil
}
