package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"GovernanceWeekly/internal/ports"
)

const (
	defaultGoogleURL = "https://translate.googleapis.com/translate_a/single"
	googleChunkRunes = 4500
)

// GoogleFree uses the public gtx endpoint of Google Translate.
type GoogleFree struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

var _ ports.Translator = (*GoogleFree)(nil)

// NewGoogleFree builds the translator; an empty endpoint uses the public one.
func NewGoogleFree(client *http.Client, endpoint, userAgent string) *GoogleFree {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if endpoint == "" {
		endpoint = defaultGoogleURL
	}
	return &GoogleFree{endpoint: endpoint, userAgent: userAgent, client: client}
}

// Backend names the translator.
func (g *GoogleFree) Backend() string { return "googlefree" }

// Translate sends text in chunks small enough for a GET request.
func (g *GoogleFree) Translate(ctx context.Context, text, source, target string) (string, error) {
	var out strings.Builder
	for _, chunk := range splitChunks(text, googleChunkRunes) {
		part, err := g.translateChunk(ctx, chunk, source, target)
		if err != nil {
			return "", err
		}
		out.WriteString(part)
	}
	return out.String(), nil
}

func (g *GoogleFree) translateChunk(ctx context.Context, text, source, target string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return parseGoogleResponse(body)
}

// parseGoogleResponse concatenates the translated segments of [[["text","src",...],...],...].
func parseGoogleResponse(body []byte) (string, error) {
	var response []any
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(response) == 0 {
		return "", errors.New("empty response from google translate")
	}

	segments, ok := response[0].([]any)
	if !ok {
		return "", errors.New("unexpected google translate response format")
	}

	var out strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			out.WriteString(s)
		}
	}
	return out.String(), nil
}
