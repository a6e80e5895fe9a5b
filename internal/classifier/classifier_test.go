package classifier

import (
	"reflect"
	"strings"
	"testing"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/keywords"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	c := New(keywords.Default())

	cases := []struct {
		name       string
		text       string
		outcome    domain.Outcome
		score      int
		categories []string
		reason     string
	}{
		{
			name:    "empty text fails",
			text:    "",
			outcome: domain.OutcomeExcludedByThreshold,
			reason:  "Score 0 below threshold 5",
		},
		{
			name:       "single tier1 term meets threshold",
			text:       "Voters queue at polling station",
			outcome:    domain.OutcomePassed,
			score:      5,
			categories: []string{domain.CategoryElection},
		},
		{
			name:       "two tier2 terms pass",
			text:       "Janamat Party releases manifesto",
			outcome:    domain.OutcomePassed,
			score:      6,
			categories: []string{domain.CategoryElection},
		},
		{
			name:    "single tier2 term fails",
			text:    "Nepali Congress talks",
			outcome: domain.OutcomeExcludedByThreshold,
			score:   3,
			reason:  "Score 3 below threshold 5",
		},
		{
			name:       "five tier3 terms pass",
			text:       "Opposition walks out of parliament as prime minister and chief minister seek dialogue",
			outcome:    domain.OutcomePassed,
			score:      5,
			categories: []string{domain.CategoryElection},
		},
		{
			name:       "election commission adds governance",
			text:       "Election Commission sets March 5 date",
			outcome:    domain.OutcomePassed,
			score:      10,
			categories: []string{domain.CategoryElection, domain.CategoryGovernance},
		},
		{
			name:    "title exclusion wins over tier terms",
			text:    "Miss Nepal pageant finals\nThe election commission announced polling station changes.",
			outcome: domain.OutcomeExcludedByTitle,
			reason:  "Title contains excluded term: miss nepal",
		},
		{
			name:    "weak exclusion in body is ignored",
			text:    "Voter list update\nThe hospital board met.",
			outcome: domain.OutcomePassed,
			score:   5,
			categories: []string{
				domain.CategoryElection,
			},
		},
		{
			name:    "strong exclusion in body rejects",
			text:    "Voter list update\nBudget talks at the stock market.",
			outcome: domain.OutcomeExcludedByBody,
			reason:  "Body contains excluded term: stock market",
		},
		{
			name:    "substring match inside a longer word",
			text:    "Cricketers back election commission",
			outcome: domain.OutcomeExcludedByTitle,
			reason:  "Title contains excluded term: cricket",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := c.Classify(tc.text)
			if got.Outcome != tc.outcome {
				t.Fatalf("outcome = %s, want %s (reason %q)", got.Outcome, tc.outcome, got.ExclusionReason)
			}
			if got.WeightedScore != tc.score {
				t.Fatalf("score = %d, want %d", got.WeightedScore, tc.score)
			}
			if !reflect.DeepEqual(got.Categories, tc.categories) {
				t.Fatalf("categories = %v, want %v", got.Categories, tc.categories)
			}
			if got.ExclusionReason != tc.reason {
				t.Fatalf("reason = %q, want %q", got.ExclusionReason, tc.reason)
			}
			if got.Passed() == got.IsExcluded {
				t.Fatalf("passed and excluded disagree: %+v", got)
			}
			if got.IsExcluded && got.RelevanceScore != 0 {
				t.Fatalf("excluded article kept relevance %v", got.RelevanceScore)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	c := New(nil)
	text := "CPN-UML names candidates\nThe election commission published the voter list for the March 5 vote."
	first := c.Classify(text)
	second := c.Classify(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestTitleExclusionDominates(t *testing.T) {
	t.Parallel()

	c := New(keywords.Default())
	body := strings.Repeat("election commission polling station voter list ", 20)
	for _, ex := range keywords.Default().Exclusions {
		title := "Update on " + strings.ToUpper(ex.Term)
		got := c.Classify(title + "\n" + body)
		if !got.IsExcluded || got.Outcome != domain.OutcomeExcludedByTitle {
			t.Fatalf("term %q in title not excluded: %+v", ex.Term, got)
		}
	}
}

func TestMatchDiagnostics(t *testing.T) {
	t.Parallel()

	c := New(keywords.Default())
	got := c.Classify("Alliance talks\nCandidates were named by the party president and the general secretary over six rounds")

	if got.WeightedScore != 18 {
		t.Fatalf("score = %d, want 18", got.WeightedScore)
	}
	if got.Tier2.Count != 6 {
		t.Fatalf("tier2 count = %d, want 6", got.Tier2.Count)
	}
	if len(got.Tier2.Sample) != 5 {
		t.Fatalf("tier2 sample = %v, want 5 entries", got.Tier2.Sample)
	}
	if got.Tier1.Count != 0 || got.Tier1.Sample != nil {
		t.Fatalf("unexpected tier1 matches: %+v", got.Tier1)
	}
}

func TestCustomWeights(t *testing.T) {
	t.Parallel()

	table, err := keywords.Parse([]byte(`
weights: {tier1: 10, tier2: 4, tier3: 2}
threshold: 8
governanceMarkers: ["commission"]
tier1: ["poll date"]
tier2: ["alliance", "manifesto"]
tier3: ["parliament"]
exclusions:
  - {term: "football", scope: body}
`))
	if err != nil {
		t.Fatalf("parse table: %v", err)
	}
	c := New(table)

	if got := c.Classify("Alliance signs manifesto"); got.WeightedScore != 8 || !got.Passed() {
		t.Fatalf("two tier2 terms: %+v", got)
	}
	if got := c.Classify("Alliance in parliament"); got.WeightedScore != 6 || got.Passed() {
		t.Fatalf("below custom threshold: %+v", got)
	}
	if got := c.Classify("Poll date fixed"); !reflect.DeepEqual(got.Categories, []string{domain.CategoryElection}) {
		t.Fatalf("marker must match the tier1 term itself: %+v", got)
	}
	if got := c.Classify("Alliance news\nfootball and manifesto"); got.Outcome != domain.OutcomeExcludedByBody {
		t.Fatalf("body exclusion: %+v", got)
	}
}

func TestScoreAndBodyExclusion(t *testing.T) {
	t.Parallel()

	c := New(keywords.Default())
	if got := c.Score("Miss Nepal voter list"); got != 5 {
		t.Fatalf("Score ignores exclusions, got %d", got)
	}
	if term, ok := c.BodyExclusion("Tourism board backs polls"); !ok || term != "tourism" {
		t.Fatalf("BodyExclusion = %q, %v", term, ok)
	}
	if _, ok := c.BodyExclusion("Miss Nepal voter list"); ok {
		t.Fatalf("title-only term treated as body exclusion")
	}
}
