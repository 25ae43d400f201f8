// Package record defines the audit aggregate and the store that owns it.
package record

// Status is the answer recorded against one checklist item.
type Status string

const (
	StatusUnset Status = ""
	StatusYes   Status = "yes"
	StatusNo    Status = "no"
	StatusNA    Status = "na"
)

// Valid reports whether s is one of the recognised statuses (including unset).
func (s Status) Valid() bool {
	switch s {
	case StatusUnset, StatusYes, StatusNo, StatusNA:
		return true
	default:
		return false
	}
}

// Answered reports whether a status has been recorded at all.
func (s Status) Answered() bool { return s != StatusUnset }

// Answer is the status+notes pair recorded against one item. Notes are
// optional in general but required once the status is "no".
type Answer struct {
	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ProjectInfo identifies the project under audit. All six fields are
// required before submission. AuditDate is an ISO calendar date (YYYY-MM-DD).
type ProjectInfo struct {
	ProjectCode    string `json:"project_code"`
	SiteName       string `json:"site_name"`
	SiteAddress    string `json:"site_address"`
	ProjectManager string `json:"project_manager"`
	Auditor        string `json:"auditor"`
	AuditDate      string `json:"audit_date"`
}

// Signoff is the final approval block. The signature is an opaque image
// payload captured outside the core; encoding/json round-trips it as base64.
type Signoff struct {
	Comments                string `json:"comments,omitempty"`
	ProjectManagerName      string `json:"project_manager_name"`
	ProjectManagerSignature []byte `json:"project_manager_signature,omitempty"`
	ProjectManagerDate      string `json:"project_manager_date"`
}

// Record is the aggregate root for one audit: project info, one answer per
// item id, and the sign-off block. It is persisted as a single blob.
type Record struct {
	ProjectInfo ProjectInfo       `json:"project_info"`
	Answers     map[string]Answer `json:"answers"`
	Signoff     Signoff           `json:"signoff"`
}

// Answer returns the answer for an item id, zero-valued when none recorded.
func (r Record) Answer(itemID string) Answer {
	return r.Answers[itemID]
}

// Clone returns a deep copy safe to hand out as a read-only view.
func (r Record) Clone() Record {
	out := r
	out.Answers = make(map[string]Answer, len(r.Answers))
	for k, v := range r.Answers {
		out.Answers[k] = v
	}
	if r.Signoff.ProjectManagerSignature != nil {
		sig := make([]byte, len(r.Signoff.ProjectManagerSignature))
		copy(sig, r.Signoff.ProjectManagerSignature)
		out.Signoff.ProjectManagerSignature = sig
	}
	return out
}
