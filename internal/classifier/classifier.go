package classifier

import (
	"fmt"
	"strings"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/keywords"
)

const (
	tier1SampleSize = 5
	tier2SampleSize = 5
	tier3SampleSize = 3
)

type term struct {
	raw   string
	lower string
}

type exclusion struct {
	term
	scope keywords.Scope
}

// Classifier scores article text against weighted keyword tiers.
// It is safe for concurrent use.
type Classifier struct {
	tier1      []term
	tier2      []term
	tier3      []term
	exclusions []exclusion
	markers    []string
	weights    keywords.Weights
	threshold  int
}

// New compiles the keyword table into a classifier.
func New(table *keywords.Table) *Classifier {
	if table == nil {
		table = keywords.Default()
	}
	c := &Classifier{
		tier1:     compile(table.Tier1),
		tier2:     compile(table.Tier2),
		tier3:     compile(table.Tier3),
		weights:   table.Weights,
		threshold: table.Threshold,
	}
	for _, ex := range table.Exclusions {
		c.exclusions = append(c.exclusions, exclusion{
			term:  term{raw: ex.Term, lower: strings.ToLower(ex.Term)},
			scope: ex.Scope,
		})
	}
	for _, m := range table.GovernanceMarkers {
		c.markers = append(c.markers, strings.ToLower(m))
	}
	return c
}

// Threshold returns the minimum weighted score that passes.
func (c *Classifier) Threshold() int {
	return c.threshold
}

// Classify scores title + "\n" + body text. The first line is treated as the title.
func (c *Classifier) Classify(text string) domain.Classification {
	lower := strings.ToLower(text)
	titleLine, _, _ := strings.Cut(lower, "\n")

	for _, ex := range c.exclusions {
		if strings.Contains(titleLine, ex.lower) {
			return excluded(domain.OutcomeExcludedByTitle, fmt.Sprintf("Title contains excluded term: %s", ex.raw))
		}
	}
	for _, ex := range c.exclusions {
		if ex.scope == keywords.ScopeBody && strings.Contains(lower, ex.lower) {
			return excluded(domain.OutcomeExcludedByBody, fmt.Sprintf("Body contains excluded term: %s", ex.raw))
		}
	}

	t1 := matches(lower, c.tier1)
	t2 := matches(lower, c.tier2)
	t3 := matches(lower, c.tier3)
	score := len(t1)*c.weights.Tier1 + len(t2)*c.weights.Tier2 + len(t3)*c.weights.Tier3

	result := domain.Classification{
		WeightedScore: score,
		Tier1:         domain.TierMatches{Count: len(t1), Sample: sample(t1, tier1SampleSize)},
		Tier2:         domain.TierMatches{Count: len(t2), Sample: sample(t2, tier2SampleSize)},
		Tier3:         domain.TierMatches{Count: len(t3), Sample: sample(t3, tier3SampleSize)},
	}

	if score < c.threshold {
		result.IsExcluded = true
		result.Outcome = domain.OutcomeExcludedByThreshold
		result.ExclusionReason = fmt.Sprintf("Score %d below threshold %d", score, c.threshold)
		return result
	}

	result.Categories = []string{domain.CategoryElection}
	if c.isGovernance(t1) {
		result.Categories = append(result.Categories, domain.CategoryGovernance)
	}
	result.RelevanceScore = float64(score)
	result.Outcome = domain.OutcomePassed
	return result
}

// Score returns the tier-weighted score of text without any exclusion checks.
func (c *Classifier) Score(text string) int {
	lower := strings.ToLower(text)
	return len(matches(lower, c.tier1))*c.weights.Tier1 +
		len(matches(lower, c.tier2))*c.weights.Tier2 +
		len(matches(lower, c.tier3))*c.weights.Tier3
}

// BodyExclusion returns the first body-scoped exclusion term found in text.
func (c *Classifier) BodyExclusion(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, ex := range c.exclusions {
		if ex.scope == keywords.ScopeBody && strings.Contains(lower, ex.lower) {
			return ex.raw, true
		}
	}
	return "", false
}

func (c *Classifier) isGovernance(tier1 []string) bool {
	for _, matched := range tier1 {
		lower := strings.ToLower(matched)
		for _, marker := range c.markers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}

func excluded(outcome domain.Outcome, reason string) domain.Classification {
	return domain.Classification{
		IsExcluded:      true,
		ExclusionReason: reason,
		Outcome:         outcome,
	}
}

func compile(raw []string) []term {
	out := make([]term, 0, len(raw))
	for _, r := range raw {
		out = append(out, term{raw: r, lower: strings.ToLower(r)})
	}
	return out
}

func matches(lower string, terms []term) []string {
	var out []string
	for _, t := range terms {
		if strings.Contains(lower, t.lower) {
			out = append(out, t.raw)
		}
	}
	return out
}

func sample(terms []string, n int) []string {
	if len(terms) > n {
		terms = terms[:n]
	}
	return append([]string(nil), terms...)
}
