// Package render turns a validated audit record into the archived document.
// The submitter guarantees the record has already cleared validation; the
// renderers only reproduce its content faithfully.
package render

import (
	"fmt"
	"time"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/progress"
	"github.com/telcoops/siteaudit/internal/record"
)

// Renderer formats a Document into bytes for archiving or export.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "md" (default archive format), "json".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "md":
		return &markdownRenderer{}, nil
	case "json":
		return &jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are md, json", format)
	}
}

// Document is the fully assembled input to a renderer: every project field,
// every item in catalog order with its answer, the non-compliance summary,
// and the sign-off block.
type Document struct {
	GeneratedAt  string                   `json:"generated_at"`
	ProjectInfo  record.ProjectInfo       `json:"project_info"`
	Overall      progress.OverallProgress `json:"overall"`
	Sections     []SectionView            `json:"sections"`
	NonCompliant []progress.ItemRef       `json:"non_compliant"`
	Signoff      SignoffView              `json:"signoff"`
}

// SectionView is one checklist section with its answers resolved.
type SectionView struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Items []ItemView `json:"items"`
}

// ItemView is one item with its recorded answer.
type ItemView struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Status record.Status `json:"status"`
	Notes  string        `json:"notes,omitempty"`
}

// SignoffView mirrors the sign-off block; the signature image rides along
// for renderers that can embed it, plus a presence flag for text formats.
type SignoffView struct {
	Comments           string `json:"comments,omitempty"`
	ProjectManagerName string `json:"project_manager_name"`
	ProjectManagerDate string `json:"project_manager_date"`
	Signature          []byte `json:"signature,omitempty"`
	Signed             bool   `json:"signed"`
}

// BuildDocument assembles a Document from the record and its derived
// completion state, walking the catalog in order.
func BuildDocument(rec record.Record, eng *progress.Engine, now time.Time) *Document {
	doc := &Document{
		GeneratedAt:  now.Format(time.RFC3339),
		ProjectInfo:  rec.ProjectInfo,
		Overall:      eng.OverallProgress(),
		NonCompliant: eng.NonCompliantItems(),
		Signoff: SignoffView{
			Comments:           rec.Signoff.Comments,
			ProjectManagerName: rec.Signoff.ProjectManagerName,
			ProjectManagerDate: rec.Signoff.ProjectManagerDate,
			Signature:          rec.Signoff.ProjectManagerSignature,
			Signed:             len(rec.Signoff.ProjectManagerSignature) > 0,
		},
	}
	for _, s := range catalog.Sections() {
		sv := SectionView{ID: s.ID, Title: s.Title}
		for _, it := range s.Items {
			a := rec.Answer(it.ID)
			sv.Items = append(sv.Items, ItemView{
				ID:     it.ID,
				Label:  it.Label,
				Status: a.Status,
				Notes:  a.Notes,
			})
		}
		doc.Sections = append(doc.Sections, sv)
	}
	return doc
}
