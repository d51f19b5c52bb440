package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParsePlan parses a qualification plan from YAML bytes.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	// Validate required fields
	if p.Name == "" {
		return nil, &LoadError{
			Message: "plan name is required",
		}
	}

	if len(p.Cases) == 0 {
		return nil, &LoadError{
			Message: "plan must have at least one case",
		}
	}

	seen := make(map[string]bool, len(p.Cases))
	for i, c := range p.Cases {
		if c.ID == "" {
			return nil, &LoadError{
				Message: fmt.Sprintf("case %d: id is required", i),
			}
		}
		if seen[c.ID] {
			return nil, &LoadError{
				Message: fmt.Sprintf("duplicate case id %q", c.ID),
			}
		}
		seen[c.ID] = true
	}

	// Resolve every case up front so a broken plan fails before any
	// network activity.
	for _, c := range p.Cases {
		if _, err := p.Resolve(c); err != nil {
			return nil, err
		}
	}

	return &p, nil
}

// LoadPlan loads a qualification plan from a file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	p, err := ParsePlan(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}

	return p, nil
}

// LoadDirectory loads all plans from a directory.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*Plan, error) {
	var plans []*Plan

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		p, err := LoadPlan(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		plans = append(plans, p)
	}

	return plans, nil
}

// FilterCases returns the cases carrying the given tag. An empty tag
// returns all cases.
func FilterCases(cases []*Case, tag string) []*Case {
	if tag == "" {
		return cases
	}

	var result []*Case
	for _, c := range cases {
		for _, t := range c.Tags {
			if t == tag {
				result = append(result, c)
				break
			}
		}
	}
	return result
}

// AdHocPlan builds a single-case plan for a command-line target, so the
// ad-hoc path and the plan path share one execution pipeline.
func AdHocPlan(target string, settings Settings) (*Plan, error) {
	p := &Plan{
		Name:     "ad-hoc",
		Target:   target,
		Defaults: settings,
		Cases: []*Case{
			{ID: "QC-ADHOC-001", Name: "ad-hoc qualification"},
		},
	}

	for _, c := range p.Cases {
		if _, err := p.Resolve(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}
