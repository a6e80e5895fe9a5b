package keywords

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// Scope tells where an exclusion term is trusted to reject an article.
type Scope string

const (
	// ScopeTitle terms only reject when they appear in the title line.
	ScopeTitle Scope = "title"
	// ScopeBody terms reject when they appear anywhere in the text.
	ScopeBody Scope = "body"
)

// ExclusionTerm is a keyword that forces rejection.
type ExclusionTerm struct {
	Term  string `yaml:"term"`
	Scope Scope  `yaml:"scope"`
}

// Weights holds the points awarded per distinct matched term of each tier.
type Weights struct {
	Tier1 int `yaml:"tier1"`
	Tier2 int `yaml:"tier2"`
	Tier3 int `yaml:"tier3"`
}

// Table is the keyword configuration consumed by the classifier and ranker.
type Table struct {
	Weights           Weights         `yaml:"weights"`
	Threshold         int             `yaml:"threshold"`
	GovernanceMarkers []string        `yaml:"governanceMarkers"`
	Tier1             []string        `yaml:"tier1"`
	Tier2             []string        `yaml:"tier2"`
	Tier3             []string        `yaml:"tier3"`
	Exclusions        []ExclusionTerm `yaml:"exclusions"`
}

// Default returns the embedded keyword table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("keywords: embedded table is invalid: %v", err))
	}
	return t
}

// Load reads a keyword table from disk. An empty path yields the embedded table.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords %s: %w", path, err)
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse keywords %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML keyword table.
func Parse(raw []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks weights, scopes and tier disjointness.
func (t *Table) Validate() error {
	if t.Weights.Tier1 <= 0 || t.Weights.Tier2 <= 0 || t.Weights.Tier3 <= 0 {
		return errors.New("tier weights must be positive")
	}
	if t.Threshold <= 0 {
		return errors.New("threshold must be positive")
	}
	if len(t.Tier1)+len(t.Tier2)+len(t.Tier3) == 0 {
		return errors.New("no tier terms configured")
	}

	owner := map[string]string{}
	for name, terms := range map[string][]string{"tier1": t.Tier1, "tier2": t.Tier2, "tier3": t.Tier3} {
		for _, term := range terms {
			key := strings.ToLower(term)
			if prev, ok := owner[key]; ok && prev != name {
				return fmt.Errorf("term %q appears in %s and %s", term, prev, name)
			}
			owner[key] = name
		}
	}

	for _, ex := range t.Exclusions {
		switch ex.Scope {
		case ScopeTitle, ScopeBody:
		default:
			return fmt.Errorf("exclusion %q has unknown scope %q", ex.Term, ex.Scope)
		}
	}
	return nil
}

// WithOverrides returns a copy with non-zero weights and threshold replaced.
func (t *Table) WithOverrides(w Weights, threshold int) *Table {
	out := *t
	if w.Tier1 > 0 {
		out.Weights.Tier1 = w.Tier1
	}
	if w.Tier2 > 0 {
		out.Weights.Tier2 = w.Tier2
	}
	if w.Tier3 > 0 {
		out.Weights.Tier3 = w.Tier3
	}
	if threshold > 0 {
		out.Threshold = threshold
	}
	return &out
}

// BodyExclusions returns the terms trusted anywhere in the text.
func (t *Table) BodyExclusions() []ExclusionTerm {
	var out []ExclusionTerm
	for _, ex := range t.Exclusions {
		if ex.Scope == ScopeBody {
			out = append(out, ex)
		}
	}
	return out
}

// normalize trims terms, drops blanks and removes case-insensitive repeats
// while keeping the first occurrence.
func (t *Table) normalize() {
	t.Tier1 = dedupe(t.Tier1)
	t.Tier2 = dedupe(t.Tier2)
	t.Tier3 = dedupe(t.Tier3)
	t.GovernanceMarkers = dedupe(t.GovernanceMarkers)

	seen := map[string]bool{}
	exclusions := make([]ExclusionTerm, 0, len(t.Exclusions))
	for _, ex := range t.Exclusions {
		ex.Term = strings.TrimSpace(ex.Term)
		key := strings.ToLower(ex.Term)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if ex.Scope == "" {
			ex.Scope = ScopeTitle
		}
		exclusions = append(exclusions, ex)
	}
	t.Exclusions = exclusions
}

func dedupe(terms []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		key := strings.ToLower(term)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, term)
	}
	return out
}
