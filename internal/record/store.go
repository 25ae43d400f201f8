package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/storage"
)

// Key is the slot key the audit record blob lives under.
const Key = "audit-record.json"

// Field names accepted by SetProjectField and SetSignoffField. They match
// the json tags of the corresponding struct fields.
const (
	FieldProjectCode    = "project_code"
	FieldSiteName       = "site_name"
	FieldSiteAddress    = "site_address"
	FieldProjectManager = "project_manager"
	FieldAuditor        = "auditor"
	FieldAuditDate      = "audit_date"

	FieldSignoffComments = "comments"
	FieldSignoffName     = "project_manager_name"
	FieldSignoffDate     = "project_manager_date"
)

// Store owns the single mutable Record. Every mutation persists the whole
// aggregate before returning, so a crash loses at most the in-flight edit.
// There is exactly one writer; no locking is needed beyond that sequencing.
type Store struct {
	slot storage.Slot
	rec  Record
	now  func() time.Time
}

// Open loads the persisted record from slot, falling back to a default
// record (audit date = today) when the slot is empty or the payload does
// not parse. Startup never fails on a bad payload.
func Open(slot storage.Slot) *Store {
	return openAt(slot, time.Now)
}

func openAt(slot storage.Slot, now func() time.Time) *Store {
	s := &Store{slot: slot, now: now}
	s.rec = s.load()
	return s
}

func (s *Store) load() Record {
	data, ok, err := s.slot.Read(Key)
	if err != nil || !ok {
		return defaultRecord(s.now())
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return defaultRecord(s.now())
	}
	if rec.Answers == nil {
		rec.Answers = make(map[string]Answer)
	}
	return rec
}

func defaultRecord(now time.Time) Record {
	return Record{
		ProjectInfo: ProjectInfo{AuditDate: now.Format("2006-01-02")},
		Answers:     make(map[string]Answer),
	}
}

// Record returns a deep copy of the current aggregate.
func (s *Store) Record() Record {
	return s.rec.Clone()
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}
	if err := s.slot.Write(Key, data); err != nil {
		return fmt.Errorf("persisting audit record: %w", err)
	}
	return nil
}

// SetProjectField updates one ProjectInfo field by name and persists.
func (s *Store) SetProjectField(name, value string) error {
	p := &s.rec.ProjectInfo
	switch name {
	case FieldProjectCode:
		p.ProjectCode = value
	case FieldSiteName:
		p.SiteName = value
	case FieldSiteAddress:
		p.SiteAddress = value
	case FieldProjectManager:
		p.ProjectManager = value
	case FieldAuditor:
		p.Auditor = value
	case FieldAuditDate:
		p.AuditDate = value
	default:
		return fmt.Errorf("unknown project info field %q", name)
	}
	return s.persist()
}

// SetSignoffField updates one textual sign-off field by name and persists.
// The signature image goes through SetSignature instead.
func (s *Store) SetSignoffField(name, value string) error {
	so := &s.rec.Signoff
	switch name {
	case FieldSignoffComments:
		so.Comments = value
	case FieldSignoffName:
		so.ProjectManagerName = value
	case FieldSignoffDate:
		so.ProjectManagerDate = value
	default:
		return fmt.Errorf("unknown sign-off field %q", name)
	}
	return s.persist()
}

// SetSignature records the project manager's signature image and persists.
func (s *Store) SetSignature(image []byte) error {
	cp := make([]byte, len(image))
	copy(cp, image)
	s.rec.Signoff.ProjectManagerSignature = cp
	return s.persist()
}

// SetAnswerStatus records a status against an item and persists. Notes
// already recorded against the item are kept.
func (s *Store) SetAnswerStatus(itemID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q: must be yes, no, or na", status)
	}
	a := s.rec.Answers[itemID]
	a.Status = status
	s.rec.Answers[itemID] = a
	return s.persist()
}

// SetAnswerNotes records notes against an item and persists.
func (s *Store) SetAnswerNotes(itemID, notes string) error {
	a := s.rec.Answers[itemID]
	a.Notes = notes
	s.rec.Answers[itemID] = a
	return s.persist()
}

// MarkSection sets every item in a catalog section to the given status in
// one persisted write. Unknown section ids are a no-op.
func (s *Store) MarkSection(sectionID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q: must be yes, no, or na", status)
	}
	items := catalog.ItemsOf(sectionID)
	if len(items) == 0 {
		return nil
	}
	for _, it := range items {
		a := s.rec.Answers[it.ID]
		a.Status = status
		s.rec.Answers[it.ID] = a
	}
	return s.persist()
}

// Reset replaces the record with defaults (audit date = today) and persists.
func (s *Store) Reset() error {
	s.rec = defaultRecord(s.now())
	return s.persist()
}
