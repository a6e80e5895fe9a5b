package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"GovernanceWeekly/internal/config"
	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
	"GovernanceWeekly/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry    *scanner.Registry
	sites       []config.SiteConfig
	maxArticles int
	logger      *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, maxArticles int, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry:    reg,
		sites:       sites,
		maxArticles: maxArticles,
		logger:      log,
	}
}

// FetchCandidates runs every site's scanner. A failing site is logged and skipped;
// an error is returned only when the registry is missing or a scanner is unknown.
func (s *StrategySource) FetchCandidates(ctx context.Context, now time.Time) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch candidates", "sites", len(s.sites), "day", now.Format("2006-01-02"))

	var aggregated []domain.Candidate
	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			return aggregated, err
		}

		kind := site.Scanner
		if kind == "" {
			kind = "homepage"
		}
		strategy, err := s.registry.Resolve(kind)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		results, err := strategy.Scan(ctx, scanner.Request{
			Now:         now,
			Site:        toScannerSite(site),
			MaxArticles: s.maxArticles,
			Options:     site.Options,
		})
		if err != nil {
			s.warn("scan site failed", "site", site.Name, "error", err)
			continue
		}

		for i := range results {
			if results[i].SiteName == "" {
				results[i].SiteName = site.Name
			}
		}
		s.debug("site produced candidates", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_candidates", len(aggregated))
	return aggregated, nil
}

func toScannerSite(cfg config.SiteConfig) scanner.Site {
	return scanner.Site{
		Name:            cfg.Name,
		BaseURL:         cfg.BaseURL,
		Domain:          cfg.Domain,
		Language:        cfg.Language,
		FeedURL:         cfg.FeedURL,
		IncludePatterns: cfg.IncludePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
		RequireYear:     cfg.RequireYear,
	}
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
