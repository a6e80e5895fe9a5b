package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GovernanceWeekly/internal/classifier"
	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/keywords"
	"GovernanceWeekly/internal/ports"
)

const (
	storedURL   = "https://ekantipur.com/news/2026/01/09/stored"
	nepaliURL   = "https://ekantipur.com/news/2026/01/10/ec"
	cricketURL  = "https://kathmandupost.com/sports/2026/01/10/cricket"
	brokenURL   = "https://ratopati.com/story/2026/404"
	untitledURL = "https://ratopati.com/story/2026/untitled"
	feedURL     = "https://kathmandupost.com/politics/2026/01/10/feed"
)

func newCollect(repo *memRepo, source *stubSource) *CollectPipeline {
	published := time.Date(2026, 1, 10, 5, 0, 0, 0, time.UTC)
	return NewCollectPipeline(CollectDeps{
		Source: source,
		Fetcher: stubFetcher{
			nepaliURL:   "<html>ec</html>",
			cricketURL:  "<html>cricket</html>",
			untitledURL: "<html></html>",
			feedURL:     "<html>paywall</html>",
		},
		Extractor: stubExtractor{
			nepaliURL: {
				Title:       "निर्वाचन आयोगले मिति तोक्यो",
				Text:        "फागुन २१ मा मतदान हुनेछ।",
				PublishedAt: &published,
			},
			cricketURL: {
				Title: "Cricket team wins series",
				Text:  "Nepal beat the visitors by five wickets.",
			},
			untitledURL: {Text: "Body without a headline."},
		},
		Translator: stubTranslator{
			"निर्वाचन आयोगले मिति तोक्यो": "Election Commission fixes the date",
			"फागुन २१ मा मतदान हुनेछ।":    "Voting will take place on March 5.",
		},
		Classifier: classifier.New(keywords.Default()),
		Summarizer: stubSummarizer{},
		Repository: repo,
		Workers:    2,
	})
}

func TestCollectStoresClassifiedArticles(t *testing.T) {
	t.Parallel()

	repo := newMemRepo(domain.Article{URL: storedURL})
	source := &stubSource{candidates: []domain.Candidate{
		{URL: storedURL, Language: "ne"},
		{URL: nepaliURL, SourceDomain: "ekantipur.com", Language: "ne"},
		{URL: nepaliURL, SourceDomain: "ekantipur.com", Language: "ne"},
		{URL: cricketURL, SourceDomain: "kathmandupost.com", Language: "en"},
		{URL: brokenURL, Language: "ne"},
		{URL: untitledURL, Language: "ne"},
		{URL: feedURL, SourceDomain: "kathmandupost.com", Language: "en", Title: "Voter list published for March 5 polls", Summary: "The voter list is out."},
	}}
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	stats, err := newCollect(repo, source).Collect(context.Background(), now)
	require.NoError(t, err)

	assert.Len(t, stats.RunID, 36)
	assert.Equal(t, 6, stats.Discovered)
	assert.Equal(t, 1, stats.SkippedExisting)
	assert.Equal(t, 3, stats.Fetched)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 2, stats.Passed)
	assert.Equal(t, map[domain.Outcome]int{domain.OutcomeExcludedByTitle: 1}, stats.Excluded)

	ec := repo.articles[nepaliURL]
	assert.Equal(t, "Election Commission fixes the date", ec.TitleTranslated)
	assert.Equal(t, "Voting will take place on March 5.", ec.FullTextTranslated)
	assert.Equal(t, []string{domain.CategoryElection, domain.CategoryGovernance}, ec.Categories)
	assert.Equal(t, domain.StatusPendingReview, ec.Status)
	assert.True(t, ec.RequiresReview)
	assert.Equal(t, "Summary: Election Commission fixes the date", ec.Summary)
	assert.Equal(t, "stub", ec.TranslationMetadata["backend"])
	assert.Equal(t, "ok", ec.TranslationMetadata["status"])
	assert.Len(t, ec.ContentHash, 64)
	assert.Equal(t, time.Date(2026, 1, 10, 5, 0, 0, 0, time.UTC), ec.PublishedAt)
	assert.Equal(t, now, ec.FetchedAt)

	cricket := repo.articles[cricketURL]
	assert.Equal(t, cricket.TitleOriginal, cricket.TitleTranslated)
	assert.Equal(t, domain.StatusRejected, cricket.Status)
	assert.Contains(t, cricket.ReviewerNotes, "cricket")
	assert.Empty(t, cricket.Summary)
	assert.Equal(t, "copied", cricket.TranslationMetadata["status"])

	feed := repo.articles[feedURL]
	assert.Equal(t, "Voter list published for March 5 polls", feed.TitleOriginal)
	assert.Equal(t, "The voter list is out.", feed.FullTextOriginal)
	assert.True(t, feed.HasCategory(domain.CategoryElection))

	assert.NotContains(t, repo.articles, brokenURL)
	assert.NotContains(t, repo.articles, untitledURL)
}

func TestCollectKeepsUntranslatedArticles(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	pipeline := NewCollectPipeline(CollectDeps{
		Source:     &stubSource{candidates: []domain.Candidate{{URL: nepaliURL, Language: "ne"}}},
		Fetcher:    stubFetcher{nepaliURL: "<html></html>"},
		Extractor:  stubExtractor{nepaliURL: {Title: "निर्वाचन आयोगको बैठक", Text: "मतदाता नामावली सार्वजनिक"}},
		Translator: stubTranslator{},
		Classifier: classifier.New(keywords.Default()),
		Repository: repo,
	})

	stats, err := pipeline.Collect(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Passed)

	art := repo.articles[nepaliURL]
	assert.Empty(t, art.TitleTranslated)
	assert.Equal(t, "failed", art.TranslationMetadata["status"])
	assert.Equal(t, "निर्वाचन आयोगको बैठक", art.DisplayTitle())
	assert.True(t, art.HasCategory(domain.CategoryGovernance))
}

func TestCollectFailsWithoutSource(t *testing.T) {
	t.Parallel()

	_, err := NewCollectPipeline(CollectDeps{}).Collect(context.Background(), time.Now())
	assert.Error(t, err)

	repo := newMemRepo()
	source := &stubSource{err: context.DeadlineExceeded}
	_, err = NewCollectPipeline(CollectDeps{
		Source:     source,
		Fetcher:    stubFetcher{},
		Extractor:  stubExtractor{},
		Classifier: classifier.New(keywords.Default()),
		Repository: repo,
	}).Collect(context.Background(), time.Now())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestContentHashIgnoresCaseAndSpacing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, contentHash("Poll Date", "set  for\nMarch 5"), contentHash("poll date", "set for march 5"))
	assert.NotEqual(t, contentHash("Poll Date", "set"), contentHash("Poll Date", "moved"))
}

var _ ports.Extractor = stubExtractor{}
