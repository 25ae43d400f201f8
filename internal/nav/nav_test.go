package nav

import (
	"errors"
	"testing"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/progress"
	"github.com/telcoops/siteaudit/internal/record"
	"github.com/telcoops/siteaudit/internal/storage"
)

func newGate(t *testing.T) (*record.Store, *Gate) {
	t.Helper()
	store := record.Open(storage.NewMemSlot())
	return store, NewGate(progress.New(store))
}

func fillProjectInfo(t *testing.T, store *record.Store) {
	t.Helper()
	for field, value := range map[string]string{
		record.FieldProjectCode:    "PTX-104",
		record.FieldSiteName:       "Westfield Tower",
		record.FieldSiteAddress:    "12 Example St, Sydney",
		record.FieldProjectManager: "D. Harney",
		record.FieldAuditor:        "M. Okafor",
		record.FieldAuditDate:      "2026-03-14",
	} {
		if err := store.SetProjectField(field, value); err != nil {
			t.Fatalf("SetProjectField(%s): %s", field, err)
		}
	}
}

func completeSignoff(t *testing.T, store *record.Store) {
	t.Helper()
	if err := store.SetSignoffField(record.FieldSignoffName, "D. Harney"); err != nil {
		t.Fatalf("SetSignoffField: %s", err)
	}
	if err := store.SetSignoffField(record.FieldSignoffDate, "2026-03-14"); err != nil {
		t.Fatalf("SetSignoffField: %s", err)
	}
	if err := store.SetSignature([]byte{1}); err != nil {
		t.Fatalf("SetSignature: %s", err)
	}
}

func TestGate_InitialState(t *testing.T) {
	_, g := newGate(t)
	if g.Index() != 0 || g.Current().ID != catalog.StepProject {
		t.Errorf("fresh gate at %d (%s), want 0 (project)", g.Index(), g.Current().ID)
	}
	if g.AtEnd() {
		t.Errorf("AtEnd() = true at index 0")
	}
}

func TestCanAccess_FirstAlwaysRestGated(t *testing.T) {
	_, g := newGate(t)
	if !g.CanAccess(0) {
		t.Errorf("CanAccess(0) = false, want unconditional true")
	}
	for i := 1; i < len(g.Steps()); i++ {
		if g.CanAccess(i) {
			t.Errorf("CanAccess(%d) = true on an empty record", i)
		}
	}
	if g.CanAccess(-1) || g.CanAccess(len(g.Steps())) {
		t.Errorf("CanAccess out of range = true")
	}
}

func TestCanAccess_PrefixCompletion(t *testing.T) {
	store, g := newGate(t)
	fillProjectInfo(t, store)
	if !g.CanAccess(1) {
		t.Errorf("CanAccess(1) = false after project info complete")
	}
	if g.CanAccess(2) {
		t.Errorf("CanAccess(2) = true with swms incomplete")
	}
	if err := store.MarkSection("swms", record.StatusYes); err != nil {
		t.Fatalf("MarkSection: %s", err)
	}
	if !g.CanAccess(2) {
		t.Errorf("CanAccess(2) = false after swms complete")
	}
}

func TestNext_RefusesWithMissingProjectFields(t *testing.T) {
	_, g := newGate(t)
	err := g.Next()
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Next() = %v, want DeniedError", err)
	}
	if denied.Reason != ReasonMissingProjectFields {
		t.Errorf("Reason = %d, want ReasonMissingProjectFields", denied.Reason)
	}
	if len(denied.Fields) == 0 {
		t.Errorf("denial names no missing fields")
	}
	if g.Index() != 0 {
		t.Errorf("index moved to %d after refusal", g.Index())
	}
}

func TestNext_RefusesWithUnansweredCount(t *testing.T) {
	store, g := newGate(t)
	fillProjectInfo(t, store)
	if err := g.Next(); err != nil {
		t.Fatalf("Next() past project = %v", err)
	}
	if g.Current().ID != "swms" {
		t.Fatalf("current = %s, want swms", g.Current().ID)
	}
	if err := store.SetAnswerStatus("swms_1", record.StatusYes); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}

	var denied *DeniedError
	if err := g.Next(); !errors.As(err, &denied) {
		t.Fatalf("Next() = %v, want DeniedError", err)
	}
	if denied.Reason != ReasonUnansweredItems || denied.Remaining != 16 {
		t.Errorf("denial = %+v, want 16 unanswered", denied)
	}
}

func TestNext_RefusesWithItemsNeedingNotes(t *testing.T) {
	store, g := newGate(t)
	fillProjectInfo(t, store)
	if err := g.Next(); err != nil {
		t.Fatalf("Next(): %v", err)
	}
	if err := store.MarkSection("swms", record.StatusYes); err != nil {
		t.Fatalf("MarkSection: %s", err)
	}
	if err := store.SetAnswerStatus("swms_5", record.StatusNo); err != nil {
		t.Fatalf("SetAnswerStatus: %s", err)
	}

	var denied *DeniedError
	if err := g.Next(); !errors.As(err, &denied) {
		t.Fatalf("Next() = %v, want DeniedError", err)
	}
	if denied.Reason != ReasonMissingNotes {
		t.Fatalf("Reason = %d, want ReasonMissingNotes", denied.Reason)
	}
	if len(denied.Items) != 1 || denied.Items[0] != "Emergency procedures understood and documented" {
		t.Errorf("denial items = %v", denied.Items)
	}

	if err := store.SetAnswerNotes("swms_5", "drill scheduled for Friday"); err != nil {
		t.Fatalf("SetAnswerNotes: %s", err)
	}
	if err := g.Next(); err != nil {
		t.Errorf("Next() after notes = %v, want advance", err)
	}
	if g.Current().ID != "donor" {
		t.Errorf("current = %s, want donor", g.Current().ID)
	}
}

func TestPrevious_AlwaysAllowed(t *testing.T) {
	store, g := newGate(t)
	fillProjectInfo(t, store)
	if err := g.Next(); err != nil {
		t.Fatalf("Next(): %v", err)
	}
	g.Previous()
	if g.Index() != 0 {
		t.Errorf("Previous() left index %d, want 0", g.Index())
	}
	g.Previous() // no-op at the first step
	if g.Index() != 0 {
		t.Errorf("Previous() at 0 moved to %d", g.Index())
	}
}

func TestJump_DeniedThenAllowed(t *testing.T) {
	store, g := newGate(t)
	var denied *DeniedError
	if err := g.Jump(3); !errors.As(err, &denied) {
		t.Fatalf("Jump(3) = %v, want DeniedError", err)
	}
	if denied.Reason != ReasonPriorIncomplete {
		t.Errorf("Reason = %d, want ReasonPriorIncomplete", denied.Reason)
	}
	if g.Index() != 0 {
		t.Errorf("failed jump moved index to %d", g.Index())
	}

	fillProjectInfo(t, store)
	for _, id := range []string{"swms", "donor"} {
		if err := store.MarkSection(id, record.StatusYes); err != nil {
			t.Fatalf("MarkSection(%s): %s", id, err)
		}
	}
	if err := g.Jump(3); err != nil {
		t.Fatalf("Jump(3) after prefix complete = %v", err)
	}
	if g.Current().ID != "cabinet" {
		t.Errorf("current = %s, want cabinet", g.Current().ID)
	}

	if err := g.Jump(99); err == nil {
		t.Errorf("Jump(99) succeeded, want range error")
	}
}

func TestNext_NoOpAtSignoff(t *testing.T) {
	store, g := newGate(t)
	fillProjectInfo(t, store)
	for _, s := range catalog.Sections() {
		if err := store.MarkSection(s.ID, record.StatusYes); err != nil {
			t.Fatalf("MarkSection(%s): %s", s.ID, err)
		}
	}
	completeSignoff(t, store)

	last := len(g.Steps()) - 1
	if err := g.Jump(last); err != nil {
		t.Fatalf("Jump(last) = %v", err)
	}
	if !g.AtEnd() {
		t.Fatalf("AtEnd() = false at last index")
	}
	if err := g.Next(); err != nil {
		t.Errorf("Next() at last index = %v, want nil no-op", err)
	}
	if g.Index() != last {
		t.Errorf("Next() at last index moved to %d", g.Index())
	}
}
