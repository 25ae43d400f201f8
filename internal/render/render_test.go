package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/telcoops/siteaudit/internal/progress"
	"github.com/telcoops/siteaudit/internal/record"
	"github.com/telcoops/siteaudit/internal/storage"
)

func buildTestDocument(t *testing.T) *Document {
	t.Helper()
	store := record.Open(storage.NewMemSlot())
	must := func(err error) {
		if err != nil {
			t.Fatalf("building record: %s", err)
		}
	}
	must(store.SetProjectField(record.FieldProjectCode, "PTX-104"))
	must(store.SetProjectField(record.FieldSiteName, "Westfield Tower"))
	must(store.SetProjectField(record.FieldAuditor, "M. Okafor"))
	must(store.MarkSection("donor", record.StatusYes))
	must(store.SetAnswerStatus("donor_5", record.StatusNo))
	must(store.SetAnswerNotes("donor_5", "connector tape missing at mast head"))
	must(store.SetSignoffField(record.FieldSignoffName, "D. Harney"))
	must(store.SetSignoffField(record.FieldSignoffDate, "2026-03-14"))
	must(store.SetSignature([]byte{0xff, 0xd8}))

	eng := progress.New(store)
	now := time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC)
	return BuildDocument(store.Record(), eng, now)
}

func TestNewRenderer_UnknownFormat(t *testing.T) {
	if _, err := NewRenderer("pdf"); err == nil {
		t.Errorf("NewRenderer(pdf) succeeded, want error")
	}
}

func TestBuildDocument_WalksCatalogInOrder(t *testing.T) {
	doc := buildTestDocument(t)
	if len(doc.Sections) != 6 {
		t.Fatalf("document has %d sections, want 6", len(doc.Sections))
	}
	if doc.Sections[0].ID != "swms" || doc.Sections[1].ID != "donor" {
		t.Errorf("section order = %s, %s; want swms, donor", doc.Sections[0].ID, doc.Sections[1].ID)
	}
	if len(doc.NonCompliant) != 1 || doc.NonCompliant[0].ItemID != "donor_5" {
		t.Errorf("NonCompliant = %+v, want donor_5", doc.NonCompliant)
	}
	if !doc.Signoff.Signed {
		t.Errorf("Signoff.Signed = false with signature present")
	}
}

func TestMarkdown_ContainsEveryRequiredField(t *testing.T) {
	doc := buildTestDocument(t)
	r, err := NewRenderer("md")
	if err != nil {
		t.Fatalf("NewRenderer: %s", err)
	}
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render: %s", err)
	}
	text := string(out)
	for _, want := range []string{
		"PTX-104",
		"Westfield Tower",
		"M. Okafor",
		"Donor Installation",
		"[NO] Weatherproofing applied to all connections",
		"connector tape missing at mast head",
		"Non-Compliance Summary",
		"D. Harney",
		"**Signature:** on file",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMarkdown_UnansweredGlyph(t *testing.T) {
	doc := buildTestDocument(t)
	r, _ := NewRenderer("md")
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render: %s", err)
	}
	// swms is untouched in the fixture, so its items render unanswered.
	if !strings.Contains(string(out), "[ ] SWMS reviewed and signed") {
		t.Errorf("markdown output missing unanswered glyph for swms_1")
	}
}

func TestJSON_RoundTripsDocument(t *testing.T) {
	doc := buildTestDocument(t)
	r, err := NewRenderer("json")
	if err != nil {
		t.Fatalf("NewRenderer: %s", err)
	}
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render: %s", err)
	}
	var back Document
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshaling rendered json: %s", err)
	}
	if back.ProjectInfo.ProjectCode != "PTX-104" {
		t.Errorf("round-tripped project code = %q", back.ProjectInfo.ProjectCode)
	}
	if len(back.Signoff.Signature) != 2 {
		t.Errorf("signature bytes lost in json round trip: %v", back.Signoff.Signature)
	}
	if back.Overall.Total != doc.Overall.Total {
		t.Errorf("overall total = %d, want %d", back.Overall.Total, doc.Overall.Total)
	}
}
