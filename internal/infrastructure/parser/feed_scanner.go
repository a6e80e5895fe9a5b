package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
	"GovernanceWeekly/internal/scanner"
)

// FeedScanner reads RSS or Atom feeds and keeps items from the last week.
type FeedScanner struct {
	fetcher ports.Fetcher
	maxAge  time.Duration
	logger  *slog.Logger
}

// NewFeedScanner wires the fetcher used to download feeds.
func NewFeedScanner(fetcher ports.Fetcher, logger *slog.Logger) *FeedScanner {
	return &FeedScanner{fetcher: fetcher, maxAge: 7 * 24 * time.Hour, logger: logger}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return "feed"
}

// Scan parses req.Site.FeedURL. Items without a date are kept.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	site := req.Site
	if site.FeedURL == "" {
		return nil, fmt.Errorf("site %s has no feed url", site.Name)
	}

	raw, err := f.fetcher.Fetch(ctx, site.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	cutoff := req.Now.Add(-f.maxAge)
	seen := map[string]struct{}{}
	var out []domain.Candidate

	for _, item := range feed.Items {
		if req.MaxArticles > 0 && len(out) >= req.MaxArticles {
			break
		}

		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		if strings.HasPrefix(link, "/") && site.BaseURL != "" {
			link = resolve(site.BaseURL, link)
		}
		if i := strings.Index(link, "#"); i >= 0 {
			link = link[:i]
		}
		if _, ok := seen[link]; ok {
			continue
		}
		if !acceptLink(link, scanner.Site{IncludePatterns: site.IncludePatterns, ExcludePatterns: site.ExcludePatterns}, nil) {
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}
		if !published.IsZero() && published.Before(cutoff) {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		seen[link] = struct{}{}
		out = append(out, domain.Candidate{
			URL:          link,
			SourceDomain: site.Domain,
			SiteName:     site.Name,
			Language:     site.Language,
			Title:        strings.TrimSpace(item.Title),
			Summary:      strings.TrimSpace(summary),
			PublishedAt:  published,
		})
	}

	f.debug("feed scanned", "site", site.Name, "items", len(feed.Items), "kept", len(out))
	return out, nil
}

func (f *FeedScanner) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
