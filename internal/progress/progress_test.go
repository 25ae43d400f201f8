package progress

import (
	"testing"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/record"
	"github.com/telcoops/siteaudit/internal/storage"
)

func newEngine(t *testing.T) (*record.Store, *Engine) {
	t.Helper()
	store := record.Open(storage.NewMemSlot())
	return store, New(store)
}

func fillProjectInfo(t *testing.T, store *record.Store) {
	t.Helper()
	set := func(field, value string) {
		if err := store.SetProjectField(field, value); err != nil {
			t.Fatalf("SetProjectField(%s): %s", field, err)
		}
	}
	set(record.FieldProjectCode, "PTX-104")
	set(record.FieldSiteName, "Westfield Tower")
	set(record.FieldSiteAddress, "12 Example St, Sydney")
	set(record.FieldProjectManager, "D. Harney")
	set(record.FieldAuditor, "M. Okafor")
	set(record.FieldAuditDate, "2026-03-14")
}

func answerSection(t *testing.T, store *record.Store, sectionID string, status record.Status) {
	t.Helper()
	if err := store.MarkSection(sectionID, status); err != nil {
		t.Fatalf("MarkSection(%s): %s", sectionID, err)
	}
}

func TestOverallProgress_EmptyRecord(t *testing.T) {
	_, eng := newEngine(t)
	got := eng.OverallProgress()
	want := OverallProgress{Completed: 0, Total: catalog.TotalItemCount(), Percentage: 0}
	if got != want {
		t.Errorf("OverallProgress() = %+v, want %+v", got, want)
	}
	if n := len(eng.IncompleteItems()); n != catalog.TotalItemCount() {
		t.Errorf("len(IncompleteItems()) = %d, want %d", n, catalog.TotalItemCount())
	}
}

func TestSectionProgress_BoundsAndTotals(t *testing.T) {
	store, eng := newEngine(t)
	answerSection(t, store, "donor", record.StatusYes)
	for _, s := range catalog.Sections() {
		p := eng.SectionProgress(s.ID)
		if p.Total != len(s.Items) {
			t.Errorf("SectionProgress(%s).Total = %d, want %d", s.ID, p.Total, len(s.Items))
		}
		if p.Completed > p.Total {
			t.Errorf("SectionProgress(%s) completed %d > total %d", s.ID, p.Completed, p.Total)
		}
	}
	if p := eng.SectionProgress("donor"); p.Completed != p.Total {
		t.Errorf("donor after MarkSection = %+v, want full", p)
	}
}

func TestSectionProgress_UnknownSection(t *testing.T) {
	_, eng := newEngine(t)
	if p := eng.SectionProgress("nope"); p != (SectionProgress{}) {
		t.Errorf("SectionProgress(unknown) = %+v, want zero", p)
	}
}

func TestOverallProgress_MatchesSectionSum(t *testing.T) {
	store, eng := newEngine(t)
	answerSection(t, store, "donor", record.StatusYes)
	answerSection(t, store, "contractor", record.StatusNA)
	if err := store.SetAnswerStatus("swms_1", record.StatusNo); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}
	sum := 0
	for _, s := range catalog.Sections() {
		sum += eng.SectionProgress(s.ID).Completed
	}
	got := eng.OverallProgress()
	if got.Completed != sum {
		t.Errorf("OverallProgress().Completed = %d, want section sum %d", got.Completed, sum)
	}
	// 9 + 4 + 1 = 14 of 57 → 24.56… → 25
	if got.Completed != 14 || got.Percentage != 25 {
		t.Errorf("OverallProgress() = %+v, want completed 14, percentage 25", got)
	}
}

func TestOverallProgress_UnknownAnswerIDsInert(t *testing.T) {
	store, eng := newEngine(t)
	if err := store.SetAnswerStatus("ghost_99", record.StatusYes); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}
	if got := eng.OverallProgress().Completed; got != 0 {
		t.Errorf("answer against unknown id counted: Completed = %d, want 0", got)
	}
}

func TestSetAnswerStatus_Idempotent(t *testing.T) {
	store, eng := newEngine(t)
	if err := store.SetAnswerStatus("das_1", record.StatusYes); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}
	first := eng.OverallProgress()
	if err := store.SetAnswerStatus("das_1", record.StatusYes); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}
	if second := eng.OverallProgress(); second != first {
		t.Errorf("repeated answer changed progress: %+v then %+v", first, second)
	}
}

func TestAnswering_Monotonic(t *testing.T) {
	store, eng := newEngine(t)
	before := eng.OverallProgress().Completed
	for i, st := range []record.Status{record.StatusYes, record.StatusNo, record.StatusNA} {
		ids := []string{"swms_1", "swms_2", "swms_3"}
		if err := store.SetAnswerStatus(ids[i], st); err != nil {
			t.Fatalf("SetAnswerStatus: %s", err)
		}
		after := eng.OverallProgress().Completed
		if after < before {
			t.Errorf("completed decreased from %d to %d after answering %s", before, after, ids[i])
		}
		before = after
	}
}

func TestNonCompliant_NoWithEmptyNotes(t *testing.T) {
	store, eng := newEngine(t)
	if err := store.SetAnswerStatus("donor_2", record.StatusNo); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}

	nc := eng.NonCompliantItems()
	if len(nc) != 1 || nc[0].ItemID != "donor_2" {
		t.Fatalf("NonCompliantItems() = %+v, want just donor_2", nc)
	}
	if nc[0].SectionID != "donor" || nc[0].SectionTitle != "Donor Installation" {
		t.Errorf("NonCompliantItems()[0] section = %q/%q", nc[0].SectionID, nc[0].SectionTitle)
	}

	missing := eng.NonCompliantWithoutNotes()
	if len(missing) != 1 || missing[0].ItemID != "donor_2" {
		t.Fatalf("NonCompliantWithoutNotes() = %+v, want just donor_2", missing)
	}

	// Even with every donor item answered, the section stays incomplete
	// while the "no" lacks notes.
	answerSection(t, store, "donor", record.StatusNo)
	if err := store.SetAnswerNotes("donor_2", "   "); err != nil {
		t.Fatalf("SetAnswerNotes: %s", err)
	}
	if p := eng.SectionProgress("donor"); p.Completed != p.Total {
		t.Fatalf("donor not fully answered: %+v", p)
	}
	if eng.SectionComplete("donor") {
		t.Errorf("SectionComplete(donor) = true with whitespace-only notes on a no")
	}
}

func TestSectionComplete_NotesSatisfyNo(t *testing.T) {
	store, eng := newEngine(t)
	answerSection(t, store, "contractor", record.StatusYes)
	if err := store.SetAnswerStatus("contr_3", record.StatusNo); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}
	if eng.SectionComplete("contractor") {
		t.Fatalf("SectionComplete = true before notes recorded")
	}
	if err := store.SetAnswerNotes("contr_3", "skip bins still on site, removal booked"); err != nil {
		t.Fatalf("SetAnswerNotes: %s", err)
	}
	if !eng.SectionComplete("contractor") {
		t.Errorf("SectionComplete = false after notes recorded")
	}
	if n := len(eng.NonCompliantWithoutNotes()); n != 0 {
		t.Errorf("NonCompliantWithoutNotes() has %d entries after notes recorded", n)
	}
}

func TestMissingProjectFields(t *testing.T) {
	store, eng := newEngine(t)
	// A fresh record has today's audit date, so five fields are missing.
	missing := eng.MissingProjectFields()
	if len(missing) != 5 {
		t.Fatalf("MissingProjectFields() = %v, want 5 entries", missing)
	}
	if missing[0] != "Project Code" {
		t.Errorf("first missing field = %q, want Project Code (form order)", missing[0])
	}
	if eng.ProjectInfoComplete() {
		t.Errorf("ProjectInfoComplete() = true on fresh record")
	}

	fillProjectInfo(t, store)
	if !eng.ProjectInfoComplete() {
		t.Errorf("ProjectInfoComplete() = false with all six fields set")
	}
}

func TestSignoffComplete(t *testing.T) {
	store, eng := newEngine(t)
	if eng.SignoffComplete() {
		t.Fatalf("SignoffComplete() = true on fresh record")
	}
	if err := store.SetSignoffField(record.FieldSignoffName, "D. Harney"); err != nil {
		t.Fatalf("SetSignoffField: %s", err)
	}
	if err := store.SetSignoffField(record.FieldSignoffDate, "2026-03-14"); err != nil {
		t.Fatalf("SetSignoffField: %s", err)
	}
	if eng.SignoffComplete() {
		t.Errorf("SignoffComplete() = true without a signature")
	}
	if err := store.SetSignature([]byte{1, 2, 3}); err != nil {
		t.Fatalf("SetSignature: %s", err)
	}
	if !eng.SignoffComplete() {
		t.Errorf("SignoffComplete() = false with name, signature, and date")
	}
}

func TestIncompleteItems_CatalogOrder(t *testing.T) {
	store, eng := newEngine(t)
	answerSection(t, store, "swms", record.StatusYes)
	inc := eng.IncompleteItems()
	if len(inc) != catalog.TotalItemCount()-17 {
		t.Fatalf("len(IncompleteItems()) = %d, want %d", len(inc), catalog.TotalItemCount()-17)
	}
	if inc[0].ItemID != "donor_1" {
		t.Errorf("first incomplete = %q, want donor_1 (catalog order)", inc[0].ItemID)
	}
}
