package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GovernanceWeekly/internal/domain"
)

func sampleReport(n int) domain.Report {
	published := time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC)
	var election []domain.Article
	for i := 0; i < n; i++ {
		election = append(election, domain.Article{
			URL:             "https://kathmandupost.com/politics/2026/01/08/story",
			TitleOriginal:   "निर्वाचन आयोग",
			TitleTranslated: "Election Commission sets poll date",
			Summary:         strings.Repeat("The Election Commission confirmed the schedule for voting. ", 6),
			PublishedAt:     published,
			Categories:      []string{domain.CategoryElection},
			ImpactScore:     42.5,
		})
	}
	return domain.Report{
		Title:       "Nepal Election Weekly",
		Subtitle:    "March 5, 2026 Election Coverage",
		Blurb:       "Election and Governance news from Nepal - Focused coverage for March 2026 Election.",
		PeriodStart: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
		Sections: []domain.Section{
			{Category: domain.CategoryElection, Articles: election},
			{Category: domain.CategoryGovernance, Articles: []domain.Article{{
				URL:           "https://example.com/cabinet",
				TitleOriginal: "Cabinet reshuffle “announced”",
				Categories:    []string{domain.CategoryGovernance},
				ImpactScore:   12,
			}}},
		},
	}
}

func TestRenderProducesValidPDF(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &PDFRenderer{}
	require.NoError(t, r.Render(&buf, sampleReport(2)))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))

	out := string(raw)
	assert.Contains(t, out, "(Nepal Election Weekly)")
	assert.Contains(t, out, "Date Range: Jan 2 - Jan 9, 2026")
	assert.Contains(t, out, "Election \\(2 articles\\)")
	assert.Contains(t, out, "Governance \\(1 articles\\)")
	assert.Contains(t, out, "Election Commission sets poll date")
	assert.Contains(t, out, noSummary)
	assert.Contains(t, out, "Impact: 42.5")
	assert.NotContains(t, out, "निर्वाचन")

	pages, err := PageCount(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestRenderBreaksLongReportsAcrossPages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, sampleReport(30)))

	pages, err := PageCount(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestPageCountRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := PageCount(bytes.NewReader([]byte("not a pdf")))
	assert.Error(t, err)
}

func TestStars(t *testing.T) {
	t.Parallel()

	cases := map[float64]int{
		55:   5,
		40:   5,
		39.9: 4,
		30:   4,
		20:   3,
		15:   2,
		14.9: 1,
		0:    1,
	}
	for impact, want := range cases {
		assert.Equal(t, want, Stars(impact), "impact %.1f", impact)
	}
}

func TestLatin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `Oli says "polls on time" - again`, latin("Oli  says “polls on time” — again"))
	assert.Equal(t, "Party", latin("पार्टी Party"))
	assert.Equal(t, "Café", latin("Café"))
}
