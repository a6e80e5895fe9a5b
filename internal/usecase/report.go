package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/logging"
	"GovernanceWeekly/internal/ports"
	"GovernanceWeekly/internal/ranking"
)

// ReportDeps wires storage, ranking and output adapters into the report pipeline.
type ReportDeps struct {
	Repository ports.Repository
	Ranker     *ranking.Ranker
	Renderer   ports.ReportRenderer
	Notifier   ports.Notifier

	// PageCounter validates the rendered document. Optional.
	PageCounter func(io.ReadSeeker) (int, error)

	OutputDir   string
	MaxArticles int
	MinImpact   float64
	Window      time.Duration
	Title       string
	Subtitle    string
	Blurb       string
	Logger      *slog.Logger
}

// ReportResult describes one generated report.
type ReportResult struct {
	RunID        string
	Path         string
	Pages        int
	Considered   int
	Selected     []domain.Article
	Decisions    []ranking.Decision
	Distribution map[string]int
}

// ReportPipeline ranks stored articles and renders the weekly PDF.
type ReportPipeline struct {
	repository  ports.Repository
	ranker      *ranking.Ranker
	renderer    ports.ReportRenderer
	notifier    ports.Notifier
	pageCounter func(io.ReadSeeker) (int, error)
	outputDir   string
	maxArticles int
	minImpact   float64
	window      time.Duration
	title       string
	subtitle    string
	blurb       string
	logger      *slog.Logger
}

// NewReportPipeline constructs the report use case.
func NewReportPipeline(deps ReportDeps) *ReportPipeline {
	window := deps.Window
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &ReportPipeline{
		repository:  deps.Repository,
		ranker:      deps.Ranker,
		renderer:    deps.Renderer,
		notifier:    deps.Notifier,
		pageCounter: deps.PageCounter,
		outputDir:   deps.OutputDir,
		maxArticles: deps.MaxArticles,
		minImpact:   deps.MinImpact,
		window:      window,
		title:       deps.Title,
		subtitle:    deps.Subtitle,
		blurb:       deps.Blurb,
		logger:      deps.Logger,
	}
}

// Generate selects the week's articles and writes the report. When nothing is
// selected no file is written and the result has an empty Path.
func (p *ReportPipeline) Generate(ctx context.Context, now time.Time) (ReportResult, error) {
	logger, runID := logging.ForRun(p.logger, "report")
	result := ReportResult{RunID: runID}

	if p.repository == nil || p.ranker == nil || p.renderer == nil {
		return result, fmt.Errorf("report pipeline misconfigured")
	}

	since := now.Add(-p.window)
	articles, err := p.repository.ListCandidates(ctx, since)
	if err != nil {
		return result, fmt.Errorf("list candidates: %w", err)
	}
	result.Considered = len(articles)

	ranked := p.ranker.Evaluate(articles, p.maxArticles, p.minImpact)
	result.Selected = ranked.Accepted
	result.Decisions = ranked.Decisions
	result.Distribution = ranking.CategoryDistribution(ranked.Accepted)

	for _, d := range ranked.Decisions {
		if d.Outcome != domain.OutcomeAccepted {
			logAt(logger, slog.LevelDebug, "article dropped", "url", d.URL, "outcome", d.Outcome, "reason", d.Reason)
		}
	}

	if len(ranked.Accepted) == 0 {
		logAt(logger, slog.LevelInfo, "no articles selected", "considered", len(articles))
		return result, nil
	}

	report := domain.Report{
		Title:       p.title,
		Subtitle:    p.subtitle,
		Blurb:       p.blurb,
		PeriodStart: since,
		PeriodEnd:   now,
		GeneratedAt: now,
		Sections:    domain.GroupByCategory(ranked.Accepted),
	}

	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, report); err != nil {
		return result, fmt.Errorf("render report: %w", err)
	}
	if p.pageCounter != nil {
		pages, err := p.pageCounter(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return result, fmt.Errorf("validate report: %w", err)
		}
		result.Pages = pages
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return result, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(p.outputDir, report.Filename())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return result, fmt.Errorf("write report: %w", err)
	}
	result.Path = path

	for _, art := range ranked.Accepted {
		if err := p.repository.UpdateImpact(ctx, art.URL, art.ImpactScore, domain.StatusVerified); err != nil {
			return result, fmt.Errorf("update impact %s: %w", art.URL, err)
		}
	}

	err = p.repository.RecordRun(ctx, domain.ReportRun{
		ID:          runID,
		GeneratedAt: now,
		Path:        path,
		Selected:    len(ranked.Accepted),
		Considered:  len(articles),
		Pages:       result.Pages,
	})
	if err != nil {
		return result, fmt.Errorf("record run: %w", err)
	}

	logAt(logger, slog.LevelInfo, "report generated",
		"path", path,
		"pages", result.Pages,
		"selected", len(ranked.Accepted),
		"considered", len(articles),
	)

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, BuildDigest(report, path)); err != nil {
			logAt(logger, slog.LevelWarn, "publish digest", "error", err)
		}
	}
	return result, nil
}

// BuildDigest renders a plain text summary of the report for chat channels.
func BuildDigest(report domain.Report, path string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s | %d articles\n", report.Title, report.DateRange(), report.ArticleCount())

	for _, section := range report.Sections {
		fmt.Fprintf(&b, "\n%s\n", section.Category)
		for i, art := range section.Articles {
			fmt.Fprintf(&b, "%d. %s (impact %.1f)\n%s\n", i+1, art.DisplayTitle(), art.ImpactScore, art.URL)
		}
	}
	if path != "" {
		fmt.Fprintf(&b, "\nReport: %s\n", filepath.Base(path))
	}
	return b.String()
}
