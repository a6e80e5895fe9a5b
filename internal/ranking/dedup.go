package ranking

import (
	"fmt"

	"GovernanceWeekly/internal/domain"
)

// DedupThresholds configures the near-duplicate rules.
type DedupThresholds struct {
	Title        float64
	SummaryGate  float64
	Summary      float64
	CombinedGate float64
	Combined     float64
}

// DefaultDedupThresholds are calibrated against difflib ratios.
var DefaultDedupThresholds = DedupThresholds{
	Title:        0.90,
	SummaryGate:  0.60,
	Summary:      0.80,
	CombinedGate: 0.70,
	Combined:     0.85,
}

// Match describes why a candidate duplicates an accepted article.
type Match struct {
	URL    string
	Reason string
}

// Deduplicator compares candidates against already accepted articles.
type Deduplicator struct {
	thresholds DedupThresholds
}

// NewDeduplicator builds a deduplicator with the given thresholds.
func NewDeduplicator(t DedupThresholds) *Deduplicator {
	return &Deduplicator{thresholds: t}
}

// Find returns the first seen article the candidate duplicates.
func (d *Deduplicator) Find(candidate domain.Article, seen []domain.Article) (Match, bool) {
	title := candidate.DisplayTitle()
	for _, prev := range seen {
		prevTitle := prev.DisplayTitle()
		titleSim := Similarity(title, prevTitle)
		if titleSim >= d.thresholds.Title {
			return Match{URL: prev.URL, Reason: fmt.Sprintf("title similarity %.2f", titleSim)}, true
		}

		if titleSim >= d.thresholds.SummaryGate {
			summarySim := Similarity(candidate.Summary, prev.Summary)
			if summarySim >= d.thresholds.Summary {
				return Match{URL: prev.URL, Reason: fmt.Sprintf("title %.2f, summary similarity %.2f", titleSim, summarySim)}, true
			}
		}

		if titleSim >= d.thresholds.CombinedGate {
			combinedSim := Similarity(title+" "+candidate.Summary, prevTitle+" "+prev.Summary)
			if combinedSim >= d.thresholds.Combined {
				return Match{URL: prev.URL, Reason: fmt.Sprintf("title %.2f, combined similarity %.2f", titleSim, combinedSim)}, true
			}
		}
	}
	return Match{}, false
}
