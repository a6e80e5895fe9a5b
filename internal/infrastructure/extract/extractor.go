package extract

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"GovernanceWeekly/internal/ports"
)

var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Read Time\s*:.*?\d+\s*(?:minute|min|second|sec)`),
	regexp.MustCompile(`(?i)\d{4}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}\s+(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s+\d{1,2}:\d{2}`),
	regexp.MustCompile(`(?i)Share on Facebook.*?Share on Twitter`),
	regexp.MustCompile(`(?i)Share via Email`),
	regexp.MustCompile(`(?i)Print this page`),
	regexp.MustCompile(`(?i)Advertisement`),
	regexp.MustCompile(`(?i)Related Articles?:?`),
	regexp.MustCompile(`(?i)Tags?:.*`),
	regexp.MustCompile(`(?i)Published on:.*`),
	regexp.MustCompile(`(?i)Updated on:.*`),
	regexp.MustCompile(`\[.*?\]`),
}

var blankLines = regexp.MustCompile(`\n\s*\n+`)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre"

// Extractor pulls readable article text out of news pages.
type Extractor struct {
	strict *bluemonday.Policy
}

var _ ports.Extractor = (*Extractor)(nil)

// New builds an extractor.
func New() *Extractor {
	return &Extractor{strict: bluemonday.StrictPolicy()}
}

// Extract returns the title, cleaned text and publication time found in page.
func (e *Extractor) Extract(pageURL string, page []byte) (ports.Extracted, error) {
	if len(bytes.TrimSpace(page)) == 0 {
		return ports.Extracted{}, fmt.Errorf("empty page")
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ports.Extracted{}, fmt.Errorf("parse url: %w", err)
	}

	full, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ports.Extracted{}, fmt.Errorf("parse document: %w", err)
	}

	var title, text string
	article, err := readability.FromReader(bytes.NewReader(page), parsedURL)
	if err == nil {
		title = article.Title
		text = blockText(article.Content)
		if text == "" {
			text = article.TextContent
		}
	}
	if strings.TrimSpace(text) == "" {
		body := full.Find("article").First()
		if body.Length() == 0 {
			body = full.Find("body")
		}
		text = selectionText(body)
	}
	if strings.TrimSpace(title) == "" {
		title = full.Find("title").First().Text()
	}

	return ports.Extracted{
		Title:       e.clean(title),
		Text:        CleanText(text),
		PublishedAt: publishedAt(full),
	}, nil
}

// CleanText strips boilerplate such as share prompts and read time notes, then collapses blank lines.
func CleanText(text string) string {
	for _, p := range junkPatterns {
		text = p.ReplaceAllString(text, "")
	}
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func (e *Extractor) clean(s string) string {
	s = html.UnescapeString(e.strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func blockText(contentHTML string) string {
	if strings.TrimSpace(contentHTML) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return ""
	}
	return selectionText(doc.Selection)
}

func selectionText(sel *goquery.Selection) string {
	var lines []string
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// nested blocks are visited on their own
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if line := strings.TrimSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return strings.TrimSpace(sel.Text())
	}
	return strings.Join(lines, "\n\n")
}

func publishedAt(doc *goquery.Document) *time.Time {
	candidates := []string{
		attr(doc.Find(`meta[property="article:published_time"]`), "content"),
		attr(doc.Find(`meta[name="date"]`), "content"),
	}
	if t := doc.Find("time").First(); t.Length() > 0 {
		if v, ok := t.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
			candidates = append(candidates, v)
		} else {
			candidates = append(candidates, t.Text())
		}
	}

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if ts, err := dateparse.ParseAny(c); err == nil {
			return &ts
		}
	}
	return nil
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.First().Attr(name)
	return v
}
