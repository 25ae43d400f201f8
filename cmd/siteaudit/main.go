// Command siteaudit is a field tool for telecom installation compliance
// audits: it walks the fixed checklists, tracks completion, and submits the
// finished audit document to the project SharePoint library.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/telcoops/siteaudit/internal/config"
	"github.com/telcoops/siteaudit/internal/graph"
	"github.com/telcoops/siteaudit/internal/nav"
	"github.com/telcoops/siteaudit/internal/progress"
	"github.com/telcoops/siteaudit/internal/record"
	"github.com/telcoops/siteaudit/internal/storage"
	"github.com/telcoops/siteaudit/internal/submit"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// Exit codes: 1 generic, 2 validation refused, 3 bad input/config,
// 4 authentication, 5 upload.
const (
	exitValidation = 2
	exitUsage      = 3
	exitAuth       = 4
	exitUpload     = 5
)

// app bundles the wired components every subcommand needs.
type app struct {
	cfg       *config.Config
	slot      storage.Slot
	store     *record.Store
	eng       *progress.Engine
	gate      *nav.Gate
	submitter *submit.Submitter
}

// rootFlags are the persistent flags shared by all subcommands.
type rootFlags struct {
	configPath string
	verbose    bool
}

func newApp(flags rootFlags) (*app, error) {
	path := flags.configPath
	if path == "" {
		path = os.Getenv("SITEAUDIT_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, codeError(exitUsage, "%s", err)
	}

	slot, err := storage.NewFileSlot(cfg.Storage.Path)
	if err != nil {
		return nil, codeError(exitUsage, "%s", err)
	}

	store := record.Open(slot)
	eng := progress.New(store)

	client := &graph.Client{
		SiteURL: cfg.Graph.SiteURL,
		Library: cfg.Graph.DocumentLibrary,
		Folder:  cfg.Graph.UploadFolder,
	}
	identity := &graph.TokenProvider{Token: os.Getenv("SITEAUDIT_TOKEN"), Client: client}

	var warn io.Writer
	if flags.verbose {
		warn = os.Stderr
	}
	return &app{
		cfg:       cfg,
		slot:      slot,
		store:     store,
		eng:       eng,
		gate:      nav.NewGate(eng),
		submitter: submit.NewSubmitter(store, eng, identity, client, slot, warn),
	}, nil
}

func main() {
	var flags rootFlags

	root := &cobra.Command{
		Use:     "siteaudit",
		Short:   "Telecom installation compliance audit form",
		Long:    "siteaudit walks the project audit checklists, records answers and sign-off, and archives the finished audit document to SharePoint.",
		Version: version,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file path (default: user config dir)")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Print processing steps to stderr")

	root.AddCommand(
		newStatusCmd(&flags),
		newItemsCmd(&flags),
		newInfoCmd(&flags),
		newAnswerCmd(&flags),
		newNoteCmd(&flags),
		newMarkCmd(&flags),
		newSignoffCmd(&flags),
		newFillCmd(&flags),
		newExportCmd(&flags),
		newDiffCmd(&flags),
		newSubmitCmd(&flags),
		newResetCmd(&flags),
	)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

// logVerbose writes a message to stderr when verbose mode is enabled.
func logVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
	}
}
