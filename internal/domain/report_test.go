package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByCategory(t *testing.T) {
	t.Parallel()

	articles := []Article{
		{URL: "a", Categories: []string{CategoryElection}, ImpactScore: 20},
		{URL: "b", Categories: []string{"Economy", CategoryGovernance}, ImpactScore: 30},
		{URL: "c", Categories: []string{CategoryElection, CategoryGovernance}, ImpactScore: 35},
		{URL: "d", Categories: []string{"Accountability"}, ImpactScore: 12},
	}

	sections := GroupByCategory(articles)
	require.Len(t, sections, 4)

	names := []string{}
	for _, s := range sections {
		names = append(names, s.Category)
	}
	assert.Equal(t, []string{CategoryElection, CategoryGovernance, "Accountability", "Economy"}, names)

	assert.Equal(t, "c", sections[0].Articles[0].URL)
	assert.Equal(t, "a", sections[0].Articles[1].URL)
	assert.Equal(t, "c", sections[1].Articles[0].URL)
	assert.Equal(t, "b", sections[1].Articles[1].URL)

	r := Report{Sections: sections}
	assert.Equal(t, 6, r.ArticleCount())
}

func TestClassificationApply(t *testing.T) {
	t.Parallel()

	var art Article
	Classification{
		Categories:     []string{CategoryElection},
		WeightedScore:  8,
		RelevanceScore: 8,
		Outcome:        OutcomePassed,
	}.Apply(&art)
	assert.Equal(t, StatusPendingReview, art.Status)
	assert.True(t, art.HasCategory(CategoryElection))
	assert.Equal(t, 8, art.WeightedScore)

	var rejected Article
	Classification{
		IsExcluded:      true,
		ExclusionReason: "Title contains excluded term: cricket",
		Outcome:         OutcomeExcludedByTitle,
	}.Apply(&rejected)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "Title contains excluded term: cricket", rejected.ReviewerNotes)
	assert.Empty(t, rejected.Categories)
}

func TestDisplayTitleFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "मतदान", Article{TitleOriginal: "मतदान", TitleTranslated: "  "}.DisplayTitle())
	assert.Equal(t, "Voting", Article{TitleOriginal: "मतदान", TitleTranslated: "Voting"}.DisplayTitle())
}

func TestReportFilenameAndRange(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 2, 27, 16, 0, 0, 0, time.UTC)
	r := Report{PeriodStart: day.AddDate(0, 0, -7), PeriodEnd: day, GeneratedAt: day}
	assert.Equal(t, "GovernanceWeekly_20260227.pdf", r.Filename())
	assert.Equal(t, "Feb 20 - Feb 27, 2026", r.DateRange())
}
