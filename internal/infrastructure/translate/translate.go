package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"GovernanceWeekly/internal/ports"
)

// FailedMarker replaces text that is still mostly Devanagari after translation.
const FailedMarker = "[Translation Failed]"

// ErrAllBackendsFailed is returned when no backend produced a result.
var ErrAllBackendsFailed = errors.New("all translation backends failed")

// Chain tries translators in order until one returns text without Devanagari.
type Chain struct {
	backends []ports.Translator
	logger   *slog.Logger
}

var _ ports.Translator = (*Chain)(nil)

// NewChain builds a chain; nil backends are skipped.
func NewChain(logger *slog.Logger, backends ...ports.Translator) *Chain {
	c := &Chain{logger: logger}
	for _, b := range backends {
		if b != nil {
			c.backends = append(c.backends, b)
		}
	}
	return c
}

// Backend lists the chained backend names.
func (c *Chain) Backend() string {
	names := make([]string, 0, len(c.backends))
	for _, b := range c.backends {
		names = append(names, b.Backend())
	}
	return strings.Join(names, ",")
}

// Translate returns the first clean translation. When every result still holds
// Devanagari the last one is cleaned up. When every backend errors the input is
// returned together with ErrAllBackendsFailed.
func (c *Chain) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if source == target {
		return text, nil
	}

	var (
		partial string
		errs    []error
	)
	for _, b := range c.backends {
		out, err := b.Translate(ctx, text, source, target)
		if err != nil {
			c.warn("translation backend failed", "backend", b.Backend(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Backend(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if !ContainsDevanagari(out) {
			return out, nil
		}
		c.warn("translation still contains Nepali", "backend", b.Backend())
		partial = out
	}

	if partial != "" {
		return Cleanup(partial), nil
	}
	if len(errs) == 0 {
		return text, nil
	}
	return text, fmt.Errorf("%w: %w", ErrAllBackendsFailed, errors.Join(errs...))
}

// ContainsDevanagari reports whether s has any rune in U+0900..U+097F.
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if isDevanagari(r) {
			return true
		}
	}
	return false
}

// Cleanup strips Devanagari runes; if less than half of the text survives it returns FailedMarker.
func Cleanup(s string) string {
	if !ContainsDevanagari(s) {
		return s
	}
	cleaned := strings.Map(func(r rune) rune {
		if isDevanagari(r) {
			return -1
		}
		return r
	}, s)
	if float64(utf8.RuneCountInString(strings.TrimSpace(cleaned))) < float64(utf8.RuneCountInString(s))*0.5 {
		return FailedMarker
	}
	return cleaned
}

func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

func (c *Chain) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

// None is the identity translator.
type None struct{}

var _ ports.Translator = None{}

// Backend names the translator.
func (None) Backend() string { return "none" }

// Translate returns text unchanged.
func (None) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

// splitChunks cuts text on paragraph, then sentence, then rune boundaries so no chunk exceeds limit runes.
func splitChunks(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, para := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(para)
		if curLen+n <= limit {
			cur.WriteString(para)
			curLen += n
			continue
		}
		flush()
		if n <= limit {
			cur.WriteString(para)
			curLen = n
			continue
		}
		runes := []rune(para)
		for len(runes) > limit {
			cut := limit
			for i := limit - 1; i > limit/2; i-- {
				if runes[i] == '.' || runes[i] == '।' || runes[i] == ' ' {
					cut = i + 1
					break
				}
			}
			chunks = append(chunks, string(runes[:cut]))
			runes = runes[cut:]
		}
		cur.WriteString(string(runes))
		curLen = len(runes)
	}
	flush()
	return chunks
}
