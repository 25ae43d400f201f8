// Package nav implements the sequential navigation gate over the audit
// steps: project info, each checklist section in catalog order, sign-off.
// Forward movement and jumps are gated on strict section completion; moving
// backward is always allowed.
package nav

import (
	"fmt"
	"strings"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/progress"
)

// Reason classifies why the gate refused a transition.
type Reason int

const (
	// ReasonPriorIncomplete: a jump target has incomplete sections before it.
	ReasonPriorIncomplete Reason = iota
	// ReasonMissingProjectFields: the project-info step has empty fields.
	ReasonMissingProjectFields
	// ReasonUnansweredItems: the current section has unanswered items.
	ReasonUnansweredItems
	// ReasonMissingNotes: non-compliant items in the current section lack notes.
	ReasonMissingNotes
	// ReasonIncompleteSignoff: the sign-off block is missing name, signature, or date.
	ReasonIncompleteSignoff
)

// DeniedError reports a refused transition with enough detail for the UI to
// tell the auditor exactly what to fix.
type DeniedError struct {
	Step      catalog.Step
	Reason    Reason
	Remaining int      // unanswered items, for ReasonUnansweredItems
	Fields    []string // missing field labels, for ReasonMissingProjectFields
	Items     []string // item labels needing notes, for ReasonMissingNotes
}

func (e *DeniedError) Error() string {
	switch e.Reason {
	case ReasonPriorIncomplete:
		return "complete previous sections first"
	case ReasonMissingProjectFields:
		return fmt.Sprintf("project information incomplete: %s", strings.Join(e.Fields, ", "))
	case ReasonUnansweredItems:
		return fmt.Sprintf("%d item(s) in %s still unanswered", e.Remaining, e.Step.Title)
	case ReasonMissingNotes:
		return fmt.Sprintf("non-compliant items in %s require notes: %s", e.Step.Title, strings.Join(e.Items, "; "))
	case ReasonIncompleteSignoff:
		return "sign-off incomplete: project manager name, signature, and date are required"
	default:
		return "navigation denied"
	}
}

// Gate tracks the active step and enforces prefix-completion access.
type Gate struct {
	eng   *progress.Engine
	steps []catalog.Step
	idx   int
}

// NewGate returns a gate positioned at the project-info step.
func NewGate(eng *progress.Engine) *Gate {
	return &Gate{eng: eng, steps: catalog.Steps()}
}

// Steps returns the navigation sequence the gate operates over.
func (g *Gate) Steps() []catalog.Step { return g.steps }

// Index returns the active step index.
func (g *Gate) Index() int { return g.idx }

// Current returns the active step.
func (g *Gate) Current() catalog.Step { return g.steps[g.idx] }

// AtEnd reports whether the gate is on the final (sign-off) step, where
// "Submit" replaces "Next".
func (g *Gate) AtEnd() bool { return g.idx == len(g.steps)-1 }

// CanAccess reports whether the step at index i may be shown: index 0
// always, any later index only when every step before it is complete.
func (g *Gate) CanAccess(i int) bool {
	if i < 0 || i >= len(g.steps) {
		return false
	}
	for j := 0; j < i; j++ {
		if !g.eng.SectionComplete(g.steps[j].ID) {
			return false
		}
	}
	return true
}

// Next advances to the following step. It refuses with a DeniedError naming
// the specific gap when the current step is incomplete, and is a no-op on
// the final step.
func (g *Gate) Next() error {
	if g.AtEnd() {
		return nil
	}
	if !g.eng.SectionComplete(g.Current().ID) {
		return g.denial(g.Current())
	}
	g.idx++
	return nil
}

// Previous moves back one step without any completion check, a no-op at
// the first step.
func (g *Gate) Previous() {
	if g.idx > 0 {
		g.idx--
	}
}

// Jump moves directly to index i when CanAccess allows it.
func (g *Gate) Jump(i int) error {
	if i < 0 || i >= len(g.steps) {
		return fmt.Errorf("step index %d out of range", i)
	}
	if !g.CanAccess(i) {
		return &DeniedError{Step: g.steps[i], Reason: ReasonPriorIncomplete}
	}
	g.idx = i
	return nil
}

// denial builds the step-specific refusal for an incomplete step.
func (g *Gate) denial(step catalog.Step) *DeniedError {
	switch step.ID {
	case catalog.StepProject:
		return &DeniedError{
			Step:   step,
			Reason: ReasonMissingProjectFields,
			Fields: g.eng.MissingProjectFields(),
		}
	case catalog.StepSignoff:
		return &DeniedError{Step: step, Reason: ReasonIncompleteSignoff}
	}
	p := g.eng.SectionProgress(step.ID)
	if p.Completed < p.Total {
		return &DeniedError{
			Step:      step,
			Reason:    ReasonUnansweredItems,
			Remaining: p.Total - p.Completed,
		}
	}
	var labels []string
	for _, ref := range g.eng.NonCompliantWithoutNotes() {
		if ref.SectionID == step.ID {
			labels = append(labels, ref.ItemLabel)
		}
	}
	return &DeniedError{Step: step, Reason: ReasonMissingNotes, Items: labels}
}
