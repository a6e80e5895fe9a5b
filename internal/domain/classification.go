package domain

// Outcome names the stage that decided an article's fate.
type Outcome string

const (
	OutcomeExcludedByTitle       Outcome = "excluded_by_title"
	OutcomeExcludedByBody        Outcome = "excluded_by_body"
	OutcomeExcludedByThreshold   Outcome = "excluded_by_threshold"
	OutcomePassed                Outcome = "passed"
	OutcomeNotClassified         Outcome = "not_classified"
	OutcomeExcludedOnRecheck     Outcome = "excluded_on_recheck"
	OutcomeBelowThresholdRescore Outcome = "below_threshold_on_rescore"
	OutcomeBelowImpactFloor      Outcome = "below_impact_floor"
	OutcomeDuplicate             Outcome = "duplicate"
	OutcomeOverCapacity          Outcome = "over_capacity"
	OutcomeAccepted              Outcome = "accepted"
)

// TierMatches holds diagnostic match data for one keyword tier.
type TierMatches struct {
	Count  int
	Sample []string
}

// Classification is the result of scoring one article text.
type Classification struct {
	Categories      []string
	WeightedScore   int
	RelevanceScore  float64
	IsExcluded      bool
	ExclusionReason string
	Outcome         Outcome

	Tier1 TierMatches
	Tier2 TierMatches
	Tier3 TierMatches
}

// Passed reports whether the article survived classification.
func (c Classification) Passed() bool {
	return !c.IsExcluded && len(c.Categories) > 0
}

// Apply copies classification fields onto the article.
func (c Classification) Apply(article *Article) {
	article.Categories = append([]string(nil), c.Categories...)
	article.WeightedScore = c.WeightedScore
	article.RelevanceScore = c.RelevanceScore
	if c.IsExcluded {
		article.Status = StatusRejected
		article.ReviewerNotes = c.ExclusionReason
		return
	}
	article.Status = StatusPendingReview
}
