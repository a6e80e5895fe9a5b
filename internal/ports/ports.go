package ports

import (
	"context"
	"io"
	"time"

	"GovernanceWeekly/internal/domain"
)

// ArticleSource discovers article links on configured news sites.
type ArticleSource interface {
	FetchCandidates(ctx context.Context, now time.Time) ([]domain.Candidate, error)
}

// Fetcher downloads raw HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extracted is the readable content of a single article page.
type Extracted struct {
	Title       string
	Text        string
	PublishedAt *time.Time
}

// Extractor turns raw HTML into title, text and publication time.
type Extractor interface {
	Extract(pageURL string, html []byte) (Extracted, error)
}

// Translator converts text between languages. Backend names the implementation
// and ends up in the article's translation metadata.
type Translator interface {
	Backend() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Classifier scores article text for election relevance.
type Classifier interface {
	Classify(text string) domain.Classification
}

// Summarizer generates short summaries of translated article text.
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article) (string, error)
}

// Repository persists articles between collection and reporting runs.
type Repository interface {
	ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)
	Upsert(ctx context.Context, article domain.Article) error
	ListCandidates(ctx context.Context, since time.Time) ([]domain.Article, error)
	UpdateImpact(ctx context.Context, url string, impact float64, status domain.ReviewStatus) error
	RecordRun(ctx context.Context, run domain.ReportRun) error
	Stats(ctx context.Context) (domain.Stats, error)
	Clear(ctx context.Context) error
}

// ReportRenderer writes the weekly PDF.
type ReportRenderer interface {
	Render(w io.Writer, report domain.Report) error
}

// Notifier streams selected digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Add(spec string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
