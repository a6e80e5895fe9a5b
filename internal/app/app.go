package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"GovernanceWeekly/internal/classifier"
	"GovernanceWeekly/internal/config"
	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/infrastructure/extract"
	"GovernanceWeekly/internal/infrastructure/fetch"
	"GovernanceWeekly/internal/infrastructure/llm"
	"GovernanceWeekly/internal/infrastructure/ml"
	"GovernanceWeekly/internal/infrastructure/parser"
	"GovernanceWeekly/internal/infrastructure/report"
	"GovernanceWeekly/internal/infrastructure/scheduler"
	"GovernanceWeekly/internal/infrastructure/storage"
	"GovernanceWeekly/internal/infrastructure/summary"
	"GovernanceWeekly/internal/infrastructure/telegram"
	"GovernanceWeekly/internal/infrastructure/translate"
	"GovernanceWeekly/internal/keywords"
	"GovernanceWeekly/internal/logging"
	"GovernanceWeekly/internal/ports"
	"GovernanceWeekly/internal/ranking"
	"GovernanceWeekly/internal/scanner"
	"GovernanceWeekly/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	repo      *storage.Repository
	collect   *usecase.CollectPipeline
	report    *usecase.ReportPipeline
	scheduler *usecase.Scheduler
	closers   []func() error
}

// New opens storage and builds every adapter named in cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	table, err := loadKeywords(cfg.Classification)
	if err != nil {
		return nil, err
	}
	cls := classifier.New(table)

	repo, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.repo = repo
	a.closers = append(a.closers, repo.Close)

	client := &http.Client{Timeout: cfg.Scraper.Timeout()}
	opts := fetch.HTTPOptions{
		UserAgent: cfg.Scraper.UserAgent,
		Delay:     cfg.Scraper.RateLimit(),
		Timeout:   cfg.Scraper.Timeout(),
		Retry: fetch.RetryConfig{
			MaxAttempts: cfg.Scraper.Retries,
			Delay:       2 * time.Second,
			Backoff:     true,
		},
	}
	if cfg.Scraper.ObeyRobots() {
		opts.Robots = fetch.NewRobotsPolicy(client, cfg.Scraper.UserAgent, baseLogger.With("component", "robots"))
	}
	pages := fetch.NewHTTPFetcher(client, opts, baseLogger.With("component", "fetch.http"))

	var listing ports.Fetcher = pages
	if cfg.Scraper.UseBrowser {
		browser := fetch.NewBrowserFetcher(cfg.Scraper.BrowserURL, cfg.Scraper.Timeout()*2, baseLogger.With("component", "fetch.browser"))
		a.closers = append(a.closers, browser.Close)
		listing = browser
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewHomepageScanner(listing, baseLogger.With("component", "scanner.homepage")))
	registry.Register(parser.NewFeedScanner(pages, baseLogger.With("component", "scanner.feed")))
	source := parser.NewStrategySource(registry, cfg.Sites, cfg.Scraper.MaxArticlesPerSite, baseLogger.With("component", "source"))

	translator := a.translator(ctx, client)

	var summarizer ports.Summarizer = summary.Heuristic{}
	if cfg.Summarizer.Mode == "remote" && cfg.Summarizer.Endpoint != "" {
		summarizer = ml.NewClient(cfg.Summarizer.Endpoint, cfg.Summarizer.APIKey, summarizer, baseLogger.With("component", "summarizer"))
	}

	a.collect = usecase.NewCollectPipeline(usecase.CollectDeps{
		Source:     source,
		Fetcher:    pages,
		Extractor:  extract.New(),
		Translator: translator,
		Classifier: cls,
		Summarizer: summarizer,
		Repository: repo,
		TargetLang: cfg.Translation.TargetLang,
		Workers:    cfg.Scraper.Workers,
		Logger:     baseLogger.With("component", "collect"),
	})

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	a.report = usecase.NewReportPipeline(usecase.ReportDeps{
		Repository:  repo,
		Ranker:      ranking.NewRanker(cls, baseLogger.With("component", "ranker")),
		Renderer:    report.NewPDFRenderer(),
		Notifier:    notifier,
		PageCounter: report.PageCount,
		OutputDir:   cfg.Report.OutputDir,
		MaxArticles: cfg.Report.MaxArticles,
		MinImpact:   cfg.Report.MinImpactScore,
		Window:      cfg.Report.Window(),
		Title:       cfg.Report.Title,
		Subtitle:    cfg.Report.Subtitle,
		Blurb:       cfg.Report.Blurb,
		Logger:      baseLogger.With("component", "report"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.Location(), baseLogger.With("component", "cron"))
	a.scheduler = usecase.NewScheduler(driver,
		a.collect, cfg.Scheduler.CollectCron,
		a.report, cfg.Scheduler.ReportCron,
		baseLogger.With("component", "scheduler"),
	)
	return a, nil
}

// Collect runs one collection pass.
func (a *Application) Collect(ctx context.Context) (usecase.CollectStats, error) {
	return a.collect.Collect(ctx, a.now())
}

// Report generates the weekly PDF from stored articles.
func (a *Application) Report(ctx context.Context) (usecase.ReportResult, error) {
	return a.report.Generate(ctx, a.now())
}

// Run collects and then reports, mirroring a full weekly cycle.
func (a *Application) Run(ctx context.Context) (usecase.ReportResult, error) {
	if _, err := a.Collect(ctx); err != nil {
		return usecase.ReportResult{}, err
	}
	return a.Report(ctx)
}

// Schedule runs the cron jobs until ctx is cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Stats summarises the article store.
func (a *Application) Stats(ctx context.Context) (domain.Stats, error) {
	return a.repo.Stats(ctx)
}

// FreshStart deletes stored articles and previously generated reports.
func (a *Application) FreshStart(ctx context.Context) error {
	if err := a.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	old, err := filepath.Glob(filepath.Join(a.cfg.Report.OutputDir, domain.ReportFilePrefix+"*.pdf"))
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	for _, path := range old {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	a.logger.Info("fresh start", "removed_reports", len(old))
	return nil
}

// Close releases storage, browser and API clients.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func (a *Application) now() time.Time {
	return time.Now().In(a.cfg.Scheduler.Location())
}

// translator builds the configured backend followed by its fallbacks.
func (a *Application) translator(ctx context.Context, client *http.Client) ports.Translator {
	cfg := a.cfg.Translation
	names := append([]string{cfg.Backend}, cfg.Fallbacks...)
	seen := map[string]bool{}

	var backends []ports.Translator
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "googlefree":
			backends = append(backends, translate.NewGoogleFree(client, cfg.GoogleURL, a.cfg.Scraper.UserAgent))
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				a.logger.Debug("gemini backend skipped", "reason", "no api key")
				continue
			}
			g, closeFn, err := translate.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				a.logger.Warn("gemini backend unavailable", "error", err)
				continue
			}
			a.closers = append(a.closers, closeFn)
			backends = append(backends, g)
		case "chatgpt":
			if a.cfg.ChatGPT.APIKey == "" {
				a.logger.Debug("chatgpt backend skipped", "reason", "no api key")
				continue
			}
			backends = append(backends, llm.NewChatGPTClient(a.cfg.ChatGPT))
		case "none":
			backends = append(backends, translate.None{})
		default:
			a.logger.Warn("unknown translation backend", "name", name)
		}
	}
	return translate.NewChain(a.logger.With("component", "translate"), backends...)
}

func loadKeywords(cfg config.ClassificationConfig) (*keywords.Table, error) {
	table := keywords.Default()
	if cfg.KeywordsFile != "" {
		loaded, err := keywords.Load(cfg.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("load keywords: %w", err)
		}
		table = loaded
	}
	weights := keywords.Weights{Tier1: cfg.Tier1Weight, Tier2: cfg.Tier2Weight, Tier3: cfg.Tier3Weight}
	return table.WithOverrides(weights, cfg.Threshold), nil
}
