package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
	"GovernanceWeekly/internal/scanner"
)

// HomepageScanner collects article links from a site's front page and optional section pages.
type HomepageScanner struct {
	fetcher ports.Fetcher
	logger  *slog.Logger
}

// NewHomepageScanner wires the fetcher used for index pages.
func NewHomepageScanner(fetcher ports.Fetcher, logger *slog.Logger) *HomepageScanner {
	return &HomepageScanner{fetcher: fetcher, logger: logger}
}

// Name identifies the strategy inside the registry.
func (h *HomepageScanner) Name() string {
	return "homepage"
}

// Scan fetches the index pages and returns matching links, sorted and capped at req.MaxArticles.
// Options["paths"] lists extra comma separated section paths to scan.
func (h *HomepageScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	site := req.Site
	if site.BaseURL == "" {
		return nil, fmt.Errorf("site %s has no base url", site.Name)
	}

	pages := []string{site.BaseURL}
	for _, p := range strings.Split(req.Options["paths"], ",") {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, resolve(site.BaseURL, p))
		}
	}

	years := []string{strconv.Itoa(req.Now.Year()), strconv.Itoa(req.Now.Year() - 1)}
	seen := map[string]struct{}{}
	var links []string

	for _, page := range pages {
		html, err := h.fetcher.Fetch(ctx, page)
		if err != nil {
			if page == site.BaseURL {
				return nil, fmt.Errorf("fetch homepage: %w", err)
			}
			h.debug("section page failed", "site", site.Name, "page", page, "error", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}

		for _, link := range extractLinks(doc, site.BaseURL, site.Domain) {
			if _, ok := seen[link]; ok {
				continue
			}
			if !acceptLink(link, site, years) {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}

	sort.Strings(links)
	if req.MaxArticles > 0 && len(links) > req.MaxArticles {
		links = links[:req.MaxArticles]
	}

	candidates := make([]domain.Candidate, 0, len(links))
	for _, link := range links {
		candidates = append(candidates, domain.Candidate{
			URL:          link,
			SourceDomain: site.Domain,
			SiteName:     site.Name,
			Language:     site.Language,
		})
	}
	h.debug("homepage scanned", "site", site.Name, "pages", len(pages), "links", len(candidates))
	return candidates, nil
}

// extractLinks returns absolute, fragment free links that mention domain.
func extractLinks(doc *goquery.Document, baseURL, domainName string) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if strings.HasPrefix(href, "/") {
			href = resolve(baseURL, href)
		}
		if domainName == "" || !strings.Contains(href, domainName) {
			return
		}
		if i := strings.Index(href, "#"); i >= 0 {
			href = href[:i]
		}
		links = append(links, href)
	})
	return links
}

func acceptLink(link string, site scanner.Site, years []string) bool {
	lower := strings.ToLower(link)
	for _, p := range site.ExcludePatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return false
		}
	}

	if len(site.IncludePatterns) > 0 {
		matched := false
		for _, p := range site.IncludePatterns {
			if strings.Contains(link, p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if site.RequireYear {
		for _, y := range years {
			if strings.Contains(link, y) {
				return true
			}
		}
		return false
	}
	return true
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func (h *HomepageScanner) debug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
