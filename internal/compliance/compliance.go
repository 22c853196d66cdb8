// Package compliance defines the SOP template structures: which sections a
// template type contains, in what order, and which standards and regulatory
// references apply. Definitions are YAML files embedded at build time so
// the binary is self-contained; unknown template types fall back to a
// generic structure instead of failing.
package compliance

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Section is one section of a template definition.
type Section struct {
	Name           string   `yaml:"name" json:"name"`
	Order          int      `yaml:"order" json:"order"`
	Required       bool     `yaml:"required" json:"required"`
	Requirements   []string `yaml:"requirements" json:"requirements,omitempty"`
	HasChecklist   bool     `yaml:"has_checklist" json:"has_checklist,omitempty"`
	ChecklistItems []string `yaml:"checklist_items" json:"checklist_items,omitempty"`
}

// RegulatoryLink points at the authority behind a requirement. Links become
// QR codes in the rendered document.
type RegulatoryLink struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Template is the full definition for one template type.
type Template struct {
	Type            string           `yaml:"type" json:"type"`
	DisplayName     string           `yaml:"display_name" json:"display_name"`
	Industry        string           `yaml:"industry" json:"industry"`
	Standards       []string         `yaml:"standards" json:"standards,omitempty"`
	RegulatoryLinks []RegulatoryLink `yaml:"regulatory_links" json:"regulatory_links,omitempty"`
	Sections        []Section        `yaml:"sections" json:"sections"`
}

// OrderedSections returns the sections sorted by order.
func (t *Template) OrderedSections() []Section {
	sections := make([]Section, len(t.Sections))
	copy(sections, t.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
	return sections
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[string]*Template
)

func loadAll() {
	templates = make(map[string]*Template)

	entries, err := dataFS.ReadDir("data")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		raw, err := dataFS.ReadFile("data/" + e.Name())
		if err != nil {
			loadErr = fmt.Errorf("compliance: read %s: %w", e.Name(), err)
			return
		}
		var t Template
		if err := yaml.Unmarshal(raw, &t); err != nil {
			loadErr = fmt.Errorf("compliance: parse %s: %w", e.Name(), err)
			return
		}
		if t.Type == "" {
			loadErr = fmt.Errorf("compliance: %s has no type", e.Name())
			return
		}
		for i := range t.Sections {
			// Sections without an explicit order rank last.
			if t.Sections[i].Order == 0 {
				t.Sections[i].Order = 999
			}
		}
		templates[t.Type] = &t
	}
}

// Load returns the definition for the template type. Unknown types get the
// generic default structure so callers can still produce a document.
func Load(templateType string) (*Template, error) {
	loadOnce.Do(loadAll)
	if loadErr != nil {
		return nil, loadErr
	}
	if t, ok := templates[templateType]; ok {
		return t, nil
	}
	return defaultTemplate(templateType), nil
}

// Types returns the known template types, sorted.
func Types() []string {
	loadOnce.Do(loadAll)
	types := make([]string, 0, len(templates))
	for t := range templates {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Known reports whether the template type has an embedded definition.
func Known(templateType string) bool {
	loadOnce.Do(loadAll)
	_, ok := templates[templateType]
	return ok
}

// defaultTemplate is the generic structure used for unknown types.
func defaultTemplate(templateType string) *Template {
	return &Template{
		Type:        templateType,
		DisplayName: "Standard Operating Procedures",
		Industry:    "general business",
		Standards:   []string{"ISO 9001"},
		Sections: []Section{
			{Name: "Introduction", Order: 1, Required: true},
			{Name: "Procedures", Order: 2, Required: true},
			{Name: "Compliance Requirements", Order: 3, Required: true},
			{Name: "Documentation", Order: 4, Required: false},
		},
	}
}
