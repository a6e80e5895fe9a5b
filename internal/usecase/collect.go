package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/logging"
	"GovernanceWeekly/internal/ports"
)

const defaultWorkers = 4

var errEmptyTitle = errors.New("article has no title")

// CollectDeps wires all driven adapters into the collection pipeline.
type CollectDeps struct {
	Source     ports.ArticleSource
	Fetcher    ports.Fetcher
	Extractor  ports.Extractor
	Translator ports.Translator
	Classifier ports.Classifier
	Summarizer ports.Summarizer
	Repository ports.Repository
	TargetLang string
	Workers    int
	Logger     *slog.Logger
}

// CollectStats counts what happened to discovered links during one run.
type CollectStats struct {
	RunID           string
	Discovered      int
	SkippedExisting int
	Fetched         int
	Failed          int
	Passed          int
	Excluded        map[domain.Outcome]int
}

// CollectPipeline scrapes, translates, classifies and stores new articles.
type CollectPipeline struct {
	source     ports.ArticleSource
	fetcher    ports.Fetcher
	extractor  ports.Extractor
	translator ports.Translator
	classifier ports.Classifier
	summarizer ports.Summarizer
	repository ports.Repository
	targetLang string
	workers    int
	logger     *slog.Logger
}

// NewCollectPipeline constructs the collection use case.
func NewCollectPipeline(deps CollectDeps) *CollectPipeline {
	workers := deps.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	target := deps.TargetLang
	if target == "" {
		target = "en"
	}
	return &CollectPipeline{
		source:     deps.Source,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		translator: deps.Translator,
		classifier: deps.Classifier,
		summarizer: deps.Summarizer,
		repository: deps.Repository,
		targetLang: target,
		workers:    workers,
		logger:     deps.Logger,
	}
}

// Collect discovers candidate links and stores every new article with its classification.
// Failures on single articles are logged and counted, they never abort the run.
func (p *CollectPipeline) Collect(ctx context.Context, now time.Time) (CollectStats, error) {
	logger, runID := logging.ForRun(p.logger, "collect")
	stats := CollectStats{RunID: runID, Excluded: map[domain.Outcome]int{}}

	if p.source == nil || p.fetcher == nil || p.extractor == nil || p.classifier == nil || p.repository == nil {
		return stats, fmt.Errorf("collect pipeline misconfigured")
	}

	candidates, err := p.source.FetchCandidates(ctx, now)
	if err != nil {
		return stats, fmt.Errorf("fetch candidates: %w", err)
	}
	candidates = uniqueCandidates(candidates)
	stats.Discovered = len(candidates)

	urls := make([]string, len(candidates))
	for i, c := range candidates {
		urls[i] = c.URL
	}
	existing, err := p.repository.ExistingURLs(ctx, urls)
	if err != nil {
		return stats, fmt.Errorf("load existing urls: %w", err)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(p.workers)

	for _, cand := range candidates {
		cand := cand
		if existing[cand.URL] {
			stats.SkippedExisting++
			continue
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			article, cls, err := p.process(ctx, logger, cand, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				logAt(logger, slog.LevelWarn, "article skipped", "url", cand.URL, "error", err)
				return nil
			}
			stats.Fetched++

			if err := p.repository.Upsert(ctx, article); err != nil {
				stats.Failed++
				logAt(logger, slog.LevelWarn, "store article", "url", cand.URL, "error", err)
				return nil
			}
			if cls.Passed() {
				stats.Passed++
			} else {
				stats.Excluded[cls.Outcome]++
			}
			logAt(logger, slog.LevelDebug, "article stored",
				"url", article.URL,
				"outcome", cls.Outcome,
				"score", cls.WeightedScore,
				"categories", strings.Join(cls.Categories, ","),
			)
			return nil
		})
	}
	_ = g.Wait()

	logAt(logger, slog.LevelInfo, "collection done",
		"discovered", stats.Discovered,
		"skipped_existing", stats.SkippedExisting,
		"fetched", stats.Fetched,
		"failed", stats.Failed,
		"passed", stats.Passed,
	)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("collect interrupted: %w", err)
	}
	return stats, nil
}

func (p *CollectPipeline) process(ctx context.Context, logger *slog.Logger, cand domain.Candidate, now time.Time) (domain.Article, domain.Classification, error) {
	page, err := p.fetcher.Fetch(ctx, cand.URL)
	if err != nil {
		return domain.Article{}, domain.Classification{}, fmt.Errorf("fetch: %w", err)
	}

	extracted, err := p.extractor.Extract(cand.URL, page)
	if err != nil {
		if cand.Title == "" {
			return domain.Article{}, domain.Classification{}, fmt.Errorf("extract: %w", err)
		}
		logAt(logger, slog.LevelDebug, "extraction failed, using feed fields", "url", cand.URL, "error", err)
	}

	title := strings.TrimSpace(extracted.Title)
	if title == "" {
		title = strings.TrimSpace(cand.Title)
	}
	if title == "" {
		return domain.Article{}, domain.Classification{}, errEmptyTitle
	}
	text := strings.TrimSpace(extracted.Text)
	if text == "" {
		text = strings.TrimSpace(cand.Summary)
	}

	article := domain.Article{
		URL:              cand.URL,
		SourceDomain:     cand.SourceDomain,
		Language:         cand.Language,
		TitleOriginal:    title,
		FullTextOriginal: text,
		PublishedAt:      cand.PublishedAt,
		FetchedAt:        now.UTC(),
		ContentHash:      contentHash(title, text),
	}
	if extracted.PublishedAt != nil {
		article.PublishedAt = *extracted.PublishedAt
	}

	p.translate(ctx, logger, &article)

	cls := p.classifier.Classify(article.DisplayTitle() + "\n" + article.ScoringText())
	cls.Apply(&article)
	article.RequiresReview = cls.Passed()

	if cls.Passed() && p.summarizer != nil {
		summary, err := p.summarizer.Summarize(ctx, article)
		if err != nil {
			logAt(logger, slog.LevelWarn, "summarize", "url", article.URL, "error", err)
		}
		article.Summary = summary
	}
	return article, cls, nil
}

// translate fills the translated fields. English sources are copied through.
func (p *CollectPipeline) translate(ctx context.Context, logger *slog.Logger, article *domain.Article) {
	source := strings.ToLower(strings.TrimSpace(article.Language))
	meta := map[string]string{
		"source_lang": source,
		"target_lang": p.targetLang,
	}
	article.TranslationMetadata = meta

	if source == "" || source == p.targetLang {
		meta["backend"] = "none"
		meta["status"] = "copied"
		article.TitleTranslated = article.TitleOriginal
		article.FullTextTranslated = article.FullTextOriginal
		return
	}
	if p.translator == nil {
		meta["backend"] = "none"
		meta["status"] = "skipped"
		return
	}
	meta["backend"] = p.translator.Backend()

	title, titleErr := p.translator.Translate(ctx, article.TitleOriginal, source, p.targetLang)
	text, textErr := p.translator.Translate(ctx, article.FullTextOriginal, source, p.targetLang)
	if err := errors.Join(titleErr, textErr); err != nil {
		meta["status"] = "failed"
		logAt(logger, slog.LevelWarn, "translate", "url", article.URL, "error", err)
		return
	}
	meta["status"] = "ok"
	article.TitleTranslated = title
	article.FullTextTranslated = text
}

func uniqueCandidates(in []domain.Candidate) []domain.Candidate {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, c := range in {
		if c.URL == "" || seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out
}

func contentHash(title, text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(title+" "+text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func logAt(logger *slog.Logger, level slog.Level, msg string, args ...any) {
	if logger != nil {
		logger.Log(context.Background(), level, msg, args...)
	}
}
