package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
)

const maxSummaryChars = 500

// Client talks to an external summarization service and falls back to a local summarizer.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	fallback ports.Summarizer
	logger   *slog.Logger
}

var _ ports.Summarizer = (*Client)(nil)

// NewClient creates a reusable HTTP client. fallback may be nil.
func NewClient(endpoint, apiKey string, fallback ports.Summarizer, logger *slog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		fallback: fallback,
		logger:   logger,
	}
}

// Summarize requests a summary of the translated article text.
func (c *Client) Summarize(ctx context.Context, article domain.Article) (string, error) {
	payload := map[string]any{
		"url":       article.URL,
		"title":     article.DisplayTitle(),
		"text":      article.ScoringText(),
		"max_chars": maxSummaryChars,
	}

	var resp struct {
		Summary string `json:"summary"`
	}

	err := c.post(ctx, "/summarize", payload, &resp)
	if err == nil && strings.TrimSpace(resp.Summary) != "" {
		return strings.TrimSpace(resp.Summary), nil
	}
	if err == nil {
		err = fmt.Errorf("empty summary")
	}
	if c.fallback == nil {
		return "", err
	}

	c.warn("remote summarizer failed, using fallback", "url", article.URL, "error", err)
	return c.fallback.Summarize(ctx, article)
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	if c.endpoint == "" {
		return fmt.Errorf("summarizer endpoint is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
