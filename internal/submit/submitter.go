package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/telcoops/siteaudit/internal/graph"
	"github.com/telcoops/siteaudit/internal/progress"
	"github.com/telcoops/siteaudit/internal/record"
	"github.com/telcoops/siteaudit/internal/render"
	"github.com/telcoops/siteaudit/internal/storage"
)

// SnapshotKey is the slot key holding the last successfully submitted
// document, kept so later runs can show what changed since the archive.
const SnapshotKey = "audit-snapshot.md"

// ErrBusy is returned when a submission is already in flight; duplicate
// remote writes of the same audit are never allowed.
var ErrBusy = errors.New("a submission is already in flight")

// RecordSource yields read-only views of the current audit record.
type RecordSource interface {
	Record() record.Record
}

// Submitter runs the full submission cycle: validate, resolve identity,
// render, upload, snapshot. At most one cycle is in flight at a time.
// Upload failure leaves both the in-memory and persisted record untouched;
// the only recovery path is retry.
type Submitter struct {
	mu   sync.Mutex
	busy bool

	src      RecordSource
	eng      *progress.Engine
	identity graph.IdentityProvider
	uploader graph.Uploader
	slot     storage.Slot
	now      func() time.Time
	warn     io.Writer // nil silences snapshot warnings
}

// NewSubmitter wires a Submitter. warn may be nil.
func NewSubmitter(src RecordSource, eng *progress.Engine, identity graph.IdentityProvider, uploader graph.Uploader, slot storage.Slot, warn io.Writer) *Submitter {
	return &Submitter{
		src:      src,
		eng:      eng,
		identity: identity,
		uploader: uploader,
		slot:     slot,
		now:      time.Now,
		warn:     warn,
	}
}

// Result reports a completed submission.
type Result struct {
	SubmissionID string
	FileName     string
	SubmittedBy  string
}

// Submit runs one submission cycle. Validation and authentication are
// checked before any external call; a *Failure or *graph.AuthError is
// returned without side effects. A concurrent call gets ErrBusy.
func (s *Submitter) Submit(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if f := Validate(s.eng); f != nil {
		return nil, f
	}

	id, err := s.identity.ActiveIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, &graph.AuthError{Msg: "not signed in"}
	}
	token, err := s.identity.AcquireToken(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := s.src.Record()
	docBytes, err := s.renderDocument(rec)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	name := FileName(rec.ProjectInfo, s.now())
	if err := s.uploader.Upload(ctx, token, docBytes, name); err != nil {
		return nil, err
	}

	// Snapshot failures are advisory; the upload already succeeded.
	if err := s.slot.Write(SnapshotKey, docBytes); err != nil && s.warn != nil {
		fmt.Fprintf(s.warn, "WARN: snapshot write failed: %s\n", err)
	}

	return &Result{
		SubmissionID: uuid.NewString(),
		FileName:     name,
		SubmittedBy:  id.DisplayName,
	}, nil
}

func (s *Submitter) renderDocument(rec record.Record) ([]byte, error) {
	r, err := render.NewRenderer("md")
	if err != nil {
		return nil, err
	}
	return r.Render(render.BuildDocument(rec, s.eng, s.now()))
}

// Changes diffs the current record's rendering against the last submitted
// snapshot, in diff-match-patch text form. The boolean is false when no
// snapshot exists (never submitted).
func (s *Submitter) Changes() (string, bool, error) {
	prev, ok, err := s.slot.Read(SnapshotKey)
	if err != nil {
		return "", false, fmt.Errorf("reading snapshot: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	cur, err := s.renderDocument(s.src.Record())
	if err != nil {
		return "", false, fmt.Errorf("rendering document: %w", err)
	}

	before := stripGeneratedLine(string(prev))
	after := stripGeneratedLine(string(cur))
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	patches := dmp.PatchMake(before, diffs)
	return dmp.PatchToText(patches), true, nil
}

var generatedLine = regexp.MustCompile(`(?m)^\*Generated .*\*\n?`)

// stripGeneratedLine drops the render timestamp so it never shows up as a
// spurious change between snapshots.
func stripGeneratedLine(s string) string {
	return generatedLine.ReplaceAllString(s, "")
}
