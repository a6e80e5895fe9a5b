package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"GovernanceWeekly/internal/ports"
)

// ErrDisallowed is returned when robots.txt forbids the URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

const maxBodyBytes = 8 << 20

// HTTPOptions tunes the polite HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	// Delay is the minimum gap between two requests to the same host.
	Delay   time.Duration
	Timeout time.Duration
	Retry   RetryConfig
	// Robots is nil when robots.txt checks are disabled.
	Robots *RobotsPolicy
}

// HTTPFetcher downloads pages with per-host rate limiting, robots checks and retries.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client; a nil client gets opts.Timeout.
func NewHTTPFetcher(client *http.Client, opts HTTPOptions, logger *slog.Logger) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPFetcher{
		client:   client,
		opts:     opts,
		logger:   logger,
		limiters: map[string]*rate.Limiter{},
	}
}

// Fetch returns the body of rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if f.opts.Robots != nil {
		allowed, err := f.opts.Robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	var body []byte
	err = WithRetry(ctx, f.opts.Retry, func() error {
		if err := f.limiter(u.Host).Wait(ctx); err != nil {
			return permanent(fmt.Errorf("rate limit wait: %w", err))
		}
		var reqErr error
		body, reqErr = f.get(ctx, rawURL)
		if reqErr != nil {
			f.debug("fetch attempt failed", "url", rawURL, "error", reqErr)
		}
		return reqErr
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("unexpected status %s", resp.Status)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, statusErr
		}
		return nil, permanent(statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.limiters[host]; ok {
		return l
	}
	limit := rate.Inf
	if f.opts.Delay > 0 {
		limit = rate.Every(f.opts.Delay)
	}
	l := rate.NewLimiter(limit, 1)
	f.limiters[host] = l
	return l
}

func (f *HTTPFetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
