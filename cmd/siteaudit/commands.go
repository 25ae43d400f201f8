package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/telcoops/siteaudit/internal/catalog"
	"github.com/telcoops/siteaudit/internal/graph"
	"github.com/telcoops/siteaudit/internal/record"
	"github.com/telcoops/siteaudit/internal/render"
	"github.com/telcoops/siteaudit/internal/submit"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show audit progress per section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			overall := a.eng.OverallProgress()
			fmt.Fprintf(out, "Overall: %d/%d items answered (%d%%)\n\n", overall.Completed, overall.Total, overall.Percentage)

			for i, step := range a.gate.Steps() {
				marker := " "
				if a.eng.SectionComplete(step.ID) {
					marker = "x"
				}
				if step.Checklist {
					p := a.eng.SectionProgress(step.ID)
					fmt.Fprintf(out, "%d. [%s] %-24s %d/%d\n", i+1, marker, step.Title, p.Completed, p.Total)
				} else {
					fmt.Fprintf(out, "%d. [%s] %s\n", i+1, marker, step.Title)
				}
			}

			if missing := a.eng.NonCompliantWithoutNotes(); len(missing) > 0 {
				fmt.Fprintf(out, "\n%d non-compliant item(s) still need notes:\n", len(missing))
				for _, ref := range missing {
					fmt.Fprintf(out, "  - %s: %s\n", ref.SectionTitle, ref.ItemLabel)
				}
			}
			return nil
		},
	}
}

func newItemsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "items [section-id]",
		Short: "List checklist sections, or the items of one section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, s := range catalog.Sections() {
					fmt.Fprintf(out, "%-14s %s (%d items)\n", s.ID, s.Title, len(s.Items))
				}
				return nil
			}

			section, ok := catalog.SectionByID(args[0])
			if !ok {
				return codeError(exitUsage, "unknown section %q", args[0])
			}
			rec := a.store.Record()
			for _, it := range section.Items {
				ans := rec.Answer(it.ID)
				status := string(ans.Status)
				if status == "" {
					status = "-"
				}
				fmt.Fprintf(out, "%-12s [%-3s] %s\n", it.ID, status, it.Label)
				if ans.Notes != "" {
					fmt.Fprintf(out, "             notes: %s\n", ans.Notes)
				}
			}
			return nil
		},
	}
}

func newInfoCmd(flags *rootFlags) *cobra.Command {
	var code, site, address, manager, auditor, date string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show or update project information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}

			updates := map[string]string{}
			addFlagValue(cmd, "code", record.FieldProjectCode, code, updates)
			addFlagValue(cmd, "site", record.FieldSiteName, site, updates)
			addFlagValue(cmd, "address", record.FieldSiteAddress, address, updates)
			addFlagValue(cmd, "manager", record.FieldProjectManager, manager, updates)
			addFlagValue(cmd, "auditor", record.FieldAuditor, auditor, updates)
			addFlagValue(cmd, "date", record.FieldAuditDate, date, updates)
			for field, value := range updates {
				if err := a.store.SetProjectField(field, value); err != nil {
					return codeError(exitUsage, "%s", err)
				}
			}

			info := a.store.Record().ProjectInfo
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project Code:    %s\n", info.ProjectCode)
			fmt.Fprintf(out, "Site Name:       %s\n", info.SiteName)
			fmt.Fprintf(out, "Site Address:    %s\n", info.SiteAddress)
			fmt.Fprintf(out, "Project Manager: %s\n", info.ProjectManager)
			fmt.Fprintf(out, "Auditor:         %s\n", info.Auditor)
			fmt.Fprintf(out, "Audit Date:      %s\n", info.AuditDate)
			if missing := a.eng.MissingProjectFields(); len(missing) > 0 {
				fmt.Fprintf(out, "\nMissing: %s\n", strings.Join(missing, ", "))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&code, "code", "", "Project code")
	f.StringVar(&site, "site", "", "Site name")
	f.StringVar(&address, "address", "", "Site address")
	f.StringVar(&manager, "manager", "", "Project manager")
	f.StringVar(&auditor, "auditor", "", "Auditor name")
	f.StringVar(&date, "date", "", "Audit date (YYYY-MM-DD)")
	return cmd
}

// addFlagValue records a field update when its flag was explicitly set,
// so an empty string can still clear a field.
func addFlagValue(cmd *cobra.Command, flag, field, value string, updates map[string]string) {
	if cmd.Flags().Changed(flag) {
		updates[field] = value
	}
}

func newAnswerCmd(flags *rootFlags) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "answer <item-id> <yes|no|na>",
		Short: "Record an answer against a checklist item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			itemID := args[0]
			if !knownItem(itemID) {
				return codeError(exitUsage, "unknown item %q; run \"siteaudit items\" to list sections", itemID)
			}
			if err := a.store.SetAnswerStatus(itemID, record.Status(args[1])); err != nil {
				return codeError(exitUsage, "%s", err)
			}
			if cmd.Flags().Changed("notes") {
				if err := a.store.SetAnswerNotes(itemID, notes); err != nil {
					return codeError(exitUsage, "%s", err)
				}
			}
			if args[1] == string(record.StatusNo) && strings.TrimSpace(notes) == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s recorded as non-compliant; notes are required before submission\n", itemID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the item (required for \"no\" answers)")
	return cmd
}

func newNoteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "note <item-id> <text>",
		Short: "Record notes against a checklist item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			if !knownItem(args[0]) {
				return codeError(exitUsage, "unknown item %q", args[0])
			}
			if err := a.store.SetAnswerNotes(args[0], strings.Join(args[1:], " ")); err != nil {
				return codeError(exitUsage, "%s", err)
			}
			return nil
		},
	}
}

func newMarkCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <section-id> <yes|no|na>",
		Short: "Set every item in a section to the same status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			if _, ok := catalog.SectionByID(args[0]); !ok {
				return codeError(exitUsage, "unknown section %q", args[0])
			}
			if err := a.store.MarkSection(args[0], record.Status(args[1])); err != nil {
				return codeError(exitUsage, "%s", err)
			}
			p := a.eng.SectionProgress(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d answered\n", args[0], p.Completed, p.Total)
			return nil
		},
	}
}

func newSignoffCmd(flags *rootFlags) *cobra.Command {
	var name, date, comments, signatureFile string
	cmd := &cobra.Command{
		Use:   "signoff",
		Short: "Record the project manager sign-off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				if err := a.store.SetSignoffField(record.FieldSignoffName, name); err != nil {
					return codeError(exitUsage, "%s", err)
				}
			}
			if cmd.Flags().Changed("date") {
				if err := a.store.SetSignoffField(record.FieldSignoffDate, date); err != nil {
					return codeError(exitUsage, "%s", err)
				}
			}
			if cmd.Flags().Changed("comments") {
				if err := a.store.SetSignoffField(record.FieldSignoffComments, comments); err != nil {
					return codeError(exitUsage, "%s", err)
				}
			}
			if signatureFile != "" {
				img, err := os.ReadFile(signatureFile)
				if err != nil {
					return codeError(exitUsage, "reading signature image: %s", err)
				}
				if err := a.store.SetSignature(img); err != nil {
					return codeError(exitUsage, "%s", err)
				}
			}

			so := a.store.Record().Signoff
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:      %s\n", so.ProjectManagerName)
			fmt.Fprintf(out, "Date:      %s\n", so.ProjectManagerDate)
			sig := "absent"
			if len(so.ProjectManagerSignature) > 0 {
				sig = fmt.Sprintf("%d bytes", len(so.ProjectManagerSignature))
			}
			fmt.Fprintf(out, "Signature: %s\n", sig)
			if so.Comments != "" {
				fmt.Fprintf(out, "Comments:  %s\n", so.Comments)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "Project manager name")
	f.StringVar(&date, "date", "", "Sign-off date (YYYY-MM-DD)")
	f.StringVar(&comments, "comments", "", "Sign-off comments")
	f.StringVar(&signatureFile, "signature-file", "", "Path to the signature image")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the audit document locally",
		Long:  "Render the audit document without uploading, for review or as a fallback when submission fails.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			renderer, err := render.NewRenderer(format)
			if err != nil {
				return codeError(exitUsage, "%s", err)
			}
			doc := render.BuildDocument(a.store.Record(), a.eng, time.Now())
			data, err := renderer.Render(doc)
			if err != nil {
				return codeError(exitUsage, "rendering document: %s", err)
			}
			if out != "" {
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return codeError(exitUsage, "writing output file: %s", err)
				}
				return nil
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return codeError(exitUsage, "writing output: %s", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "md", "Output format: md or json")
	cmd.Flags().StringVar(&out, "out", "", "Write output to file instead of stdout")
	return cmd
}

func newDiffCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show changes since the last submitted audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			text, ok, err := a.submitter.Changes()
			if err != nil {
				return codeError(exitUsage, "%s", err)
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "No submitted audit to compare against.")
				return nil
			}
			if text == "" {
				fmt.Fprintln(out, "No changes since last submission.")
				return nil
			}
			fmt.Fprint(out, text)
			return nil
		},
	}
}

func newSubmitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Validate the audit and upload the finished document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}

			logVerbose(flags.verbose, "Validating audit")
			res, err := a.submitter.Submit(cmd.Context())
			if err != nil {
				var failure *submit.Failure
				if errors.As(err, &failure) {
					step := a.gate.Steps()[failure.StepIndex]
					return codeError(exitValidation, "%s (fix in step %d: %s)", failure.Message, failure.StepIndex+1, step.Title)
				}
				var authErr *graph.AuthError
				if errors.As(err, &authErr) {
					return codeError(exitAuth, "%s; set SITEAUDIT_TOKEN and retry", authErr.Msg)
				}
				var uploadErr *graph.UploadError
				if errors.As(err, &uploadErr) {
					return codeError(exitUpload, "%s; your answers are saved, retry or run \"siteaudit export\"", uploadErr.Msg)
				}
				return codeError(1, "%s", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Audit submitted as %s (submission %s, by %s)\n",
				res.FileName, res.SubmissionID, res.SubmittedBy)
			return nil
		},
	}
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all answers and start a fresh audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			if !force {
				return codeError(exitUsage, "reset discards every answer; re-run with --force to confirm")
			}
			if err := a.store.Reset(); err != nil {
				return codeError(1, "%s", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Audit form reset.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm the reset")
	return cmd
}

// knownItem reports whether an item id exists in the catalog.
func knownItem(itemID string) bool {
	for _, s := range catalog.Sections() {
		for _, it := range s.Items {
			if it.ID == itemID {
				return true
			}
		}
	}
	return false
}
