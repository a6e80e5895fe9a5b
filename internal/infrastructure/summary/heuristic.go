package summary

import (
	"context"
	"strings"
	"unicode/utf8"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
)

const (
	minChars     = 300
	maxChars     = 500
	overflow     = 50
	minSentence  = 10
	maxSentences = 6
)

// Heuristic builds a lead summary from the first meaningful sentences of the article.
type Heuristic struct{}

var _ ports.Summarizer = Heuristic{}

// Summarize summarises the translated text, falling back to the original text.
func (Heuristic) Summarize(_ context.Context, article domain.Article) (string, error) {
	return Lead(article.ScoringText()), nil
}

// Lead takes sentences until roughly 300 to 500 characters or six sentences are collected.
// A sentence that would overshoot by more than 50 characters is cut and ends with "...".
func Lead(text string) string {
	var parts []string
	count := 0

	for _, raw := range strings.Split(text, ".") {
		sent := strings.TrimSpace(raw)
		n := utf8.RuneCountInString(sent)
		if n < minSentence {
			continue
		}

		potential := count + n + 2
		if count >= minChars && potential > maxChars {
			break
		}
		if potential > maxChars+overflow {
			if remaining := maxChars - count; remaining > overflow {
				parts = append(parts, strings.TrimSpace(string([]rune(sent)[:remaining]))+"...")
			}
			break
		}

		parts = append(parts, sent)
		count = potential
		if len(parts) >= maxSentences || count >= maxChars {
			break
		}
	}

	out := strings.Join(parts, ". ")
	if out != "" && !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
