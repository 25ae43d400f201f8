// Package progress derives completion state from the catalog and the audit
// record. Everything here is a pure query: no mutation, no stored state.
//
// Completion is two-tier. An item is "answered" once any status is recorded,
// and that alone is what progress counts measure. A section is only
// "complete" (the strict sense used for navigation gating and submission)
// when every item is answered and every non-compliant item carries notes.
package progress

import (
	"math"
	"strings"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/record"
)

// RecordSource yields read-only views of the current audit record.
type RecordSource interface {
	Record() record.Record
}

// Engine answers completion queries against a record source.
type Engine struct {
	src RecordSource
}

// New returns an Engine reading from src.
func New(src RecordSource) *Engine {
	return &Engine{src: src}
}

// SectionProgress is the answered-item count for one section.
type SectionProgress struct {
	Completed int
	Total     int
}

// OverallProgress aggregates answered items across the whole catalog.
type OverallProgress struct {
	Completed  int
	Total      int
	Percentage int
}

// ItemRef identifies one catalog item together with its section. Notes is
// populated only by NonCompliantItems.
type ItemRef struct {
	SectionID    string
	SectionTitle string
	ItemID       string
	ItemLabel    string
	Notes        string
}

// SectionProgress returns answered/total for one section. Unknown section
// ids yield {0, 0}.
func (e *Engine) SectionProgress(sectionID string) SectionProgress {
	rec := e.src.Record()
	items := catalog.ItemsOf(sectionID)
	p := SectionProgress{Total: len(items)}
	for _, it := range items {
		if rec.Answer(it.ID).Status.Answered() {
			p.Completed++
		}
	}
	return p
}

// OverallProgress returns answered/total across every catalog section.
// Answers against ids not in the catalog never count.
func (e *Engine) OverallProgress() OverallProgress {
	rec := e.src.Record()
	p := OverallProgress{Total: catalog.TotalItemCount()}
	for _, s := range catalog.Sections() {
		for _, it := range s.Items {
			if rec.Answer(it.ID).Status.Answered() {
				p.Completed++
			}
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p
}

// NonCompliantItems returns every item answered "no", in catalog order,
// with the recorded notes.
func (e *Engine) NonCompliantItems() []ItemRef {
	rec := e.src.Record()
	var out []ItemRef
	for _, s := range catalog.Sections() {
		for _, it := range s.Items {
			a := rec.Answer(it.ID)
			if a.Status == record.StatusNo {
				out = append(out, ItemRef{
					SectionID:    s.ID,
					SectionTitle: s.Title,
					ItemID:       it.ID,
					ItemLabel:    it.Label,
					Notes:        a.Notes,
				})
			}
		}
	}
	return out
}

// NonCompliantWithoutNotes returns the non-compliant items whose notes are
// empty after trimming, in catalog order.
func (e *Engine) NonCompliantWithoutNotes() []ItemRef {
	var out []ItemRef
	for _, ref := range e.NonCompliantItems() {
		if strings.TrimSpace(ref.Notes) == "" {
			ref.Notes = ""
			out = append(out, ref)
		}
	}
	return out
}

// IncompleteItems returns every unanswered item, in catalog order.
func (e *Engine) IncompleteItems() []ItemRef {
	rec := e.src.Record()
	var out []ItemRef
	for _, s := range catalog.Sections() {
		for _, it := range s.Items {
			if !rec.Answer(it.ID).Status.Answered() {
				out = append(out, ItemRef{
					SectionID:    s.ID,
					SectionTitle: s.Title,
					ItemID:       it.ID,
					ItemLabel:    it.Label,
				})
			}
		}
	}
	return out
}

// projectFields pairs each required ProjectInfo field with its display label,
// in form order.
var projectFields = []struct {
	label string
	value func(record.ProjectInfo) string
}{
	{"Project Code", func(p record.ProjectInfo) string { return p.ProjectCode }},
	{"Site Name", func(p record.ProjectInfo) string { return p.SiteName }},
	{"Site Address", func(p record.ProjectInfo) string { return p.SiteAddress }},
	{"Project Manager", func(p record.ProjectInfo) string { return p.ProjectManager }},
	{"Auditor", func(p record.ProjectInfo) string { return p.Auditor }},
	{"Audit Date", func(p record.ProjectInfo) string { return p.AuditDate }},
}

// MissingProjectFields returns the display names of empty ProjectInfo
// fields, in form order.
func (e *Engine) MissingProjectFields() []string {
	info := e.src.Record().ProjectInfo
	var missing []string
	for _, f := range projectFields {
		if strings.TrimSpace(f.value(info)) == "" {
			missing = append(missing, f.label)
		}
	}
	return missing
}

// ProjectInfoComplete reports whether all six ProjectInfo fields are filled.
func (e *Engine) ProjectInfoComplete() bool {
	return len(e.MissingProjectFields()) == 0
}

// SignoffComplete reports whether the project manager name, signature, and
// date are all present. Comments stay optional.
func (e *Engine) SignoffComplete() bool {
	so := e.src.Record().Signoff
	return strings.TrimSpace(so.ProjectManagerName) != "" &&
		len(so.ProjectManagerSignature) > 0 &&
		strings.TrimSpace(so.ProjectManagerDate) != ""
}

// SectionComplete reports strict completion for a navigation step. The
// project-info and sign-off pseudo-sections delegate to their own
// predicates; a checklist section requires every item answered and notes
// on every "no".
func (e *Engine) SectionComplete(sectionID string) bool {
	switch sectionID {
	case catalog.StepProject:
		return e.ProjectInfoComplete()
	case catalog.StepSignoff:
		return e.SignoffComplete()
	}
	rec := e.src.Record()
	items := catalog.ItemsOf(sectionID)
	for _, it := range items {
		a := rec.Answer(it.ID)
		if !a.Status.Answered() {
			return false
		}
		if a.Status == record.StatusNo && strings.TrimSpace(a.Notes) == "" {
			return false
		}
	}
	return true
}
