// Package catalog holds the static checklist definition for a site audit.
// The catalog is fixed at build time: section order defines the navigation
// order and item ids are unique across the whole catalog.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Section is a named, ordered group of checklist items.
type Section struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// Item is a single yes/no/n-a checklist question.
type Item struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var sections = mustLoad(catalogYAML)

func mustLoad(data []byte) []Section {
	var doc struct {
		Sections []Section `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		panic(fmt.Sprintf("catalog: invalid embedded catalog.yaml: %s", err))
	}
	seen := make(map[string]bool)
	for _, s := range doc.Sections {
		for _, it := range s.Items {
			if seen[it.ID] {
				panic(fmt.Sprintf("catalog: duplicate item id %q", it.ID))
			}
			seen[it.ID] = true
		}
	}
	return doc.Sections
}

// Sections returns every checklist section in navigation order.
// The returned slice is shared; callers must not modify it.
func Sections() []Section {
	return sections
}

// ItemsOf returns the items of the named section, or an empty slice for an
// unknown section id.
func ItemsOf(sectionID string) []Item {
	for _, s := range sections {
		if s.ID == sectionID {
			return s.Items
		}
	}
	return nil
}

// SectionByID returns the section with the given id.
func SectionByID(sectionID string) (Section, bool) {
	for _, s := range sections {
		if s.ID == sectionID {
			return s, true
		}
	}
	return Section{}, false
}

// TotalItemCount returns the number of items across all sections.
func TotalItemCount() int {
	n := 0
	for _, s := range sections {
		n += len(s.Items)
	}
	return n
}

// Pseudo-section ids for the two non-checklist steps of the audit flow.
const (
	StepProject = "project"
	StepSignoff = "signoff"
)

// Step is one stop in the audit navigation sequence. Checklist indicates
// whether the step corresponds to a real catalog section (as opposed to the
// project-info and sign-off pseudo-sections).
type Step struct {
	ID        string
	Title     string
	Checklist bool
}

var steps = buildSteps()

func buildSteps() []Step {
	out := make([]Step, 0, len(sections)+2)
	out = append(out, Step{ID: StepProject, Title: "Project Info"})
	for _, s := range sections {
		out = append(out, Step{ID: s.ID, Title: s.Title, Checklist: true})
	}
	out = append(out, Step{ID: StepSignoff, Title: "Sign-off"})
	return out
}

// Steps returns the full navigation sequence:
// project info, each checklist section in order, sign-off.
func Steps() []Step {
	return steps
}

// StepIndexOf returns the navigation index of the given step or section id,
// or -1 if unknown.
func StepIndexOf(id string) int {
	for i, st := range steps {
		if st.ID == id {
			return i
		}
	}
	return -1
}
