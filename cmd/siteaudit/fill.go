package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/nav"
	"github.com/telcoops/siteaudit/internal/record"
)

// errQuit signals the auditor asked to leave the walk; progress is already
// persisted mutation by mutation.
var errQuit = errors.New("quit")

func newFillCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Walk the audit form interactively",
		Long:  "Walk the audit step by step: project info, each checklist section, sign-off. Every answer is saved immediately; quit with \"q\" and resume any time.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			w := &walker{
				app: a,
				in:  bufio.NewScanner(cmd.InOrStdin()),
				out: cmd.OutOrStdout(),
			}
			if err := w.run(); err != nil && !errors.Is(err, errQuit) {
				return err
			}
			return nil
		},
	}
}

type walker struct {
	app *app
	in  *bufio.Scanner
	out io.Writer
}

// run resumes at the first incomplete step and walks forward until the
// sign-off step is complete or input ends.
func (w *walker) run() error {
	gate := w.app.gate
	for i := 1; i < len(gate.Steps()); i++ {
		if !gate.CanAccess(i) {
			break
		}
		if err := gate.Jump(i); err != nil {
			break
		}
	}

	for {
		step := gate.Current()
		fmt.Fprintf(w.out, "\n=== Step %d/%d: %s ===\n", gate.Index()+1, len(gate.Steps()), step.Title)

		var err error
		switch step.ID {
		case catalog.StepProject:
			err = w.fillProject()
		case catalog.StepSignoff:
			err = w.fillSignoff()
		default:
			err = w.fillSection(step.ID)
		}
		if err != nil {
			return err
		}

		if gate.AtEnd() {
			if w.app.eng.SectionComplete(catalog.StepSignoff) {
				fmt.Fprintln(w.out, "\nAudit complete. Run \"siteaudit submit\" to archive it.")
			} else {
				fmt.Fprintln(w.out, "\nSign-off incomplete; re-run \"siteaudit fill\" or use \"siteaudit signoff\".")
			}
			return nil
		}
		if err := gate.Next(); err != nil {
			var denied *nav.DeniedError
			if errors.As(err, &denied) {
				fmt.Fprintf(w.out, "Cannot continue: %s\n", denied.Error())
				// Walk the same step again so the gap can be fixed.
				continue
			}
			return err
		}
	}
}

// prompt reads one trimmed line. "q" and end of input both end the walk;
// everything entered so far is already saved.
func (w *walker) prompt(label string) (string, error) {
	fmt.Fprintf(w.out, "%s: ", label)
	if !w.in.Scan() {
		if err := w.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	line := strings.TrimSpace(w.in.Text())
	if line == "q" {
		return "", errQuit
	}
	return line, nil
}

func (w *walker) fillProject() error {
	type field struct {
		label string
		name  string
		value string
	}
	info := w.app.store.Record().ProjectInfo
	fields := []field{
		{"Project code", record.FieldProjectCode, info.ProjectCode},
		{"Site name", record.FieldSiteName, info.SiteName},
		{"Site address", record.FieldSiteAddress, info.SiteAddress},
		{"Project manager", record.FieldProjectManager, info.ProjectManager},
		{"Auditor", record.FieldAuditor, info.Auditor},
		{"Audit date (YYYY-MM-DD)", record.FieldAuditDate, info.AuditDate},
	}
	for _, f := range fields {
		label := f.label
		if f.value != "" {
			label = fmt.Sprintf("%s [%s]", f.label, f.value)
		}
		line, err := w.prompt(label)
		if err != nil {
			return err
		}
		if line == "" {
			continue // keep the current value
		}
		if err := w.app.store.SetProjectField(f.name, line); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) fillSection(sectionID string) error {
	rec := w.app.store.Record()
	for _, it := range catalog.ItemsOf(sectionID) {
		ans := rec.Answer(it.ID)
		current := string(ans.Status)
		if current == "" {
			current = "unanswered"
		}
		line, err := w.prompt(fmt.Sprintf("%s [%s] (y/n/a)", it.Label, current))
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		var status record.Status
		switch strings.ToLower(line) {
		case "y", "yes":
			status = record.StatusYes
		case "n", "no":
			status = record.StatusNo
		case "a", "na", "n/a":
			status = record.StatusNA
		default:
			fmt.Fprintf(w.out, "unrecognised answer %q; kept %s\n", line, current)
			continue
		}
		if err := w.app.store.SetAnswerStatus(it.ID, status); err != nil {
			return err
		}

		if status == record.StatusNo {
			label := "Notes (required for non-compliance)"
			if ans.Notes != "" {
				label = fmt.Sprintf("Notes [%s]", ans.Notes)
			}
			notes, err := w.prompt(label)
			if err != nil {
				return err
			}
			if notes != "" {
				if err := w.app.store.SetAnswerNotes(it.ID, notes); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *walker) fillSignoff() error {
	so := w.app.store.Record().Signoff

	name, err := w.prompt(withCurrent("Project manager name", so.ProjectManagerName))
	if err != nil {
		return err
	}
	if name != "" {
		if err := w.app.store.SetSignoffField(record.FieldSignoffName, name); err != nil {
			return err
		}
	}

	date, err := w.prompt(withCurrent("Sign-off date (YYYY-MM-DD)", so.ProjectManagerDate))
	if err != nil {
		return err
	}
	if date != "" {
		if err := w.app.store.SetSignoffField(record.FieldSignoffDate, date); err != nil {
			return err
		}
	}

	comments, err := w.prompt(withCurrent("Comments", so.Comments))
	if err != nil {
		return err
	}
	if comments != "" {
		if err := w.app.store.SetSignoffField(record.FieldSignoffComments, comments); err != nil {
			return err
		}
	}

	sigLabel := "Signature image path"
	if len(so.ProjectManagerSignature) > 0 {
		sigLabel = fmt.Sprintf("Signature image path [%d bytes on file]", len(so.ProjectManagerSignature))
	}
	path, err := w.prompt(sigLabel)
	if err != nil {
		return err
	}
	if path != "" {
		img, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w.out, "could not read signature image: %s\n", err)
			return nil
		}
		if err := w.app.store.SetSignature(img); err != nil {
			return err
		}
	}
	return nil
}

func withCurrent(label, value string) string {
	if value == "" {
		return label
	}
	return fmt.Sprintf("%s [%s]", label, value)
}
