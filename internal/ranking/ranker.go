package ranking

import (
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"

	"GovernanceWeekly/internal/domain"
)

const (
	electionBonus   = 10.0
	governanceBonus = 5.0
	longSummary     = 300
	mediumSummary   = 150
	longBonus       = 5.0
	mediumBonus     = 3.0
)

// Scorer is the part of the classifier the ranker re-runs at report time.
type Scorer interface {
	Score(text string) int
	BodyExclusion(text string) (string, bool)
	Threshold() int
}

// Decision records what happened to one input article.
type Decision struct {
	URL         string
	Title       string
	Outcome     domain.Outcome
	Reason      string
	Rescored    int
	Impact      float64
	DuplicateOf string
}

// Result is the full output of a ranking pass.
type Result struct {
	Accepted  []domain.Article
	Decisions []Decision
}

// Ranker selects the most impactful, distinct articles for the report.
type Ranker struct {
	scorer Scorer
	dedup  *Deduplicator
	logger *slog.Logger
}

// NewRanker wires the scorer used for re-checks. A nil logger disables debug output.
func NewRanker(scorer Scorer, logger *slog.Logger) *Ranker {
	return &Ranker{
		scorer: scorer,
		dedup:  NewDeduplicator(DefaultDedupThresholds),
		logger: logger,
	}
}

// WithThresholds overrides the dedup thresholds.
func (r *Ranker) WithThresholds(t DedupThresholds) *Ranker {
	r.dedup = NewDeduplicator(t)
	return r
}

// Rank returns at most maxCount distinct articles with impact >= minScore,
// ordered by impact descending.
func (r *Ranker) Rank(articles []domain.Article, maxCount int, minScore float64) []domain.Article {
	return r.Evaluate(articles, maxCount, minScore).Accepted
}

// Evaluate runs the ranking pass and reports a decision for every input article.
// Input articles are not modified; accepted ones are returned as copies carrying ImpactScore.
func (r *Ranker) Evaluate(articles []domain.Article, maxCount int, minScore float64) Result {
	res := Result{Decisions: make([]Decision, 0, len(articles))}

	type scored struct {
		article  domain.Article
		rescored int
	}
	candidates := make([]scored, 0, len(articles))

	for _, in := range articles {
		art := in
		art.Categories = append([]string(nil), in.Categories...)
		title := art.DisplayTitle()
		decision := Decision{URL: art.URL, Title: title}

		if !art.HasCategory(domain.CategoryElection) && !art.HasCategory(domain.CategoryGovernance) {
			decision.Outcome = domain.OutcomeNotClassified
			decision.Reason = "no election or governance category"
			res.Decisions = append(res.Decisions, decision)
			continue
		}

		text := title + " " + art.Summary
		if term, hit := r.scorer.BodyExclusion(text); hit {
			decision.Outcome = domain.OutcomeExcludedOnRecheck
			decision.Reason = fmt.Sprintf("title or summary contains excluded term: %s", term)
			res.Decisions = append(res.Decisions, decision)
			continue
		}

		rescored := r.scorer.Score(text)
		if rescored != art.WeightedScore {
			r.debug("score drift", "url", art.URL, "classified", art.WeightedScore, "rescored", rescored)
		}
		if rescored < r.scorer.Threshold() {
			decision.Outcome = domain.OutcomeBelowThresholdRescore
			decision.Rescored = rescored
			decision.Reason = fmt.Sprintf("rescored %d below threshold %d", rescored, r.scorer.Threshold())
			res.Decisions = append(res.Decisions, decision)
			continue
		}

		art.ImpactScore = Impact(art, rescored)
		candidates = append(candidates, scored{article: art, rescored: rescored})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].article.ImpactScore > candidates[j].article.ImpactScore
	})

	seen := make([]domain.Article, 0, len(candidates))
	for _, c := range candidates {
		art := c.article
		decision := Decision{
			URL:      art.URL,
			Title:    art.DisplayTitle(),
			Rescored: c.rescored,
			Impact:   art.ImpactScore,
		}

		switch {
		case len(res.Accepted) >= maxCount:
			decision.Outcome = domain.OutcomeOverCapacity
			decision.Reason = fmt.Sprintf("report already holds %d articles", maxCount)
		case art.ImpactScore < minScore:
			decision.Outcome = domain.OutcomeBelowImpactFloor
			decision.Reason = fmt.Sprintf("impact %.1f below %.1f", art.ImpactScore, minScore)
		default:
			if match, dup := r.dedup.Find(art, seen); dup {
				decision.Outcome = domain.OutcomeDuplicate
				decision.DuplicateOf = match.URL
				decision.Reason = match.Reason
				break
			}
			decision.Outcome = domain.OutcomeAccepted
			res.Accepted = append(res.Accepted, art)
			seen = append(seen, art)
		}
		res.Decisions = append(res.Decisions, decision)
	}

	r.debug("ranking done", "input", len(articles), "candidates", len(candidates), "accepted", len(res.Accepted))
	return res
}

// Impact combines the rescored weight, classifier relevance, category and depth bonuses.
func Impact(article domain.Article, rescored int) float64 {
	impact := float64(rescored) + article.RelevanceScore
	if article.HasCategory(domain.CategoryElection) {
		impact += electionBonus
	}
	if article.HasCategory(domain.CategoryGovernance) {
		impact += governanceBonus
	}
	switch n := utf8.RuneCountInString(article.Summary); {
	case n > longSummary:
		impact += longBonus
	case n > mediumSummary:
		impact += mediumBonus
	}
	return impact
}

// CategoryDistribution counts articles per category.
func CategoryDistribution(articles []domain.Article) map[string]int {
	dist := map[string]int{}
	for _, a := range articles {
		for _, cat := range a.Categories {
			dist[cat]++
		}
	}
	return dist
}

func (r *Ranker) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
