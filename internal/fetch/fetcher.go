// Package fetch is the HTTP boundary of the pipeline. It retries
// transient failures, paces itself, and reports unrecoverable failures
// as a missing body rather than an error.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"bookseed/internal/logging"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

type Config struct {
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries   int           `yaml:"max_retries" validate:"gte=0"`
	RetryDelay   time.Duration `yaml:"retry_delay" validate:"gte=0"`
	RequestDelay time.Duration `yaml:"request_delay" validate:"gte=0"` // minimum spacing between requests
}

func DefaultConfig() Config {
	return Config{
		UserAgent:    "bookseed/1.0 (book metadata collector)",
		Timeout:      15 * time.Second,
		MaxRetries:   3,
		RetryDelay:   2 * time.Second,
		RequestDelay: 1500 * time.Millisecond,
	}
}

// Getter is what sources need from the fetch layer.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) ([]byte, bool)
}

// Fetcher performs paced GET requests with retry and backoff.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a Fetcher. A zero RequestDelay disables pacing.
func New(cfg Config) *Fetcher {
	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// WithClient swaps the HTTP client, e.g. for an httptest server's client.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// Get fetches rawURL with params merged into its query. It returns false
// once retries are exhausted, on a non-retryable status, or when ctx ends.
func (f *Fetcher) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, bool) {
	target, err := withParams(rawURL, params)
	if err != nil {
		logging.WithPrefix("fetch").Warn("bad url", "url", rawURL, "err", err)
		return nil, false
	}

	body, err := f.doWithRetry(ctx, target)
	if err != nil {
		if ctx.Err() == nil {
			logging.WithPrefix("fetch").Warn("giving up", "url", target, "err", err)
		}
		return nil, false
	}
	return body, true
}

func (f *Fetcher) doWithRetry(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if f.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", f.cfg.UserAgent)
		}
		req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

		delay := f.backoff(attempt)
		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("request failed: %w", err)
		} else {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("read response: %w", readErr)
			case resp.StatusCode == http.StatusOK:
				return body, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("status %d", resp.StatusCode)
				if ra := retryAfter(resp); ra > 0 {
					delay = ra
				}
			default:
				return nil, fmt.Errorf("status %d", resp.StatusCode)
			}
		}

		if attempt < f.cfg.MaxRetries {
			logging.WithPrefix("fetch").Debug("retrying", "url", target, "attempt", attempt+1, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("failed after %d retries: %w", f.cfg.MaxRetries, lastErr)
}

// backoff doubles RetryDelay per attempt.
func (f *Fetcher) backoff(attempt int) time.Duration {
	return f.cfg.RetryDelay << attempt
}

// retryAfter honors a Retry-After seconds header, capped at 30s.
func retryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	seconds, err := strconv.Atoi(ra)
	if err != nil || seconds <= 0 {
		return 0
	}
	d := time.Duration(seconds) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

func withParams(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
