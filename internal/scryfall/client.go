package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/card-binder/internal/metrics"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "CardBinder/1.0"

	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second
	maxRateRetries = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	UserAgent   string
	RateLimit   time.Duration // minimum gap between requests
	PageTimeout time.Duration // bound on a single request, including body read
	HTTPClient  *http.Client
	Logger      *zap.Logger
	Metrics     *metrics.Metrics // optional
}

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	pageTimeout time.Duration
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewClient creates a new Scryfall API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rateLimitDelay
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = requestTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		rateLimiter: rate.NewLimiter(rate.Every(opts.RateLimit), 1),
		userAgent:   opts.UserAgent,
		pageTimeout: opts.PageTimeout,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
}

// SetPrintsURL builds the first search page for every printing of a set,
// in set order.
func (c *Client) SetPrintsURL(setCode string) string {
	q := url.Values{}
	q.Set("order", "set")
	q.Set("q", "set:"+setCode)
	q.Set("unique", "prints")
	return c.baseURL + "/cards/search?" + q.Encode()
}

// SearchPage fetches one page of search results. pageURL is either a URL
// from SetPrintsURL or a NextPage value from a previous result.
func (c *Client) SearchPage(ctx context.Context, pageURL string) (*SearchResult, error) {
	var result SearchResult
	if err := c.doRequest(ctx, pageURL, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch search page: %w", err)
	}

	if result.HasMore && result.NextPage == "" {
		return nil, fmt.Errorf("search page reports more results without a next page")
	}

	return &result, nil
}

// doRequest performs a GET with rate limiting and a per-request timeout.
// Only HTTP 429 is retried; any other failure is returned to the caller.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	backoff := initialBackoff

	for attempt := 0; ; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		start := time.Now()
		retryAfter, err := c.attempt(ctx, url, result)
		c.metrics.RecordPage(time.Since(start), err)
		if err == nil {
			return nil
		}
		if retryAfter < 0 || attempt >= maxRateRetries {
			return err
		}

		wait := backoff
		if retryAfter > 0 {
			wait = retryAfter
		}
		c.metrics.RecordRetry()
		c.logger.Debug("rate limited by Scryfall, backing off",
			zap.String("url", url),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// attempt performs one request. It returns a non-negative retry delay only
// when the server answered 429.
func (c *Client) attempt(ctx context.Context, url string, result interface{}) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return -1, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return -1, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return -1, fmt.Errorf("failed to read response body: %w", err)
		}

		if err := json.Unmarshal(body, result); err != nil {
			return -1, fmt.Errorf("failed to parse JSON response: %w", err)
		}

		return -1, nil

	case http.StatusTooManyRequests:
		var wait time.Duration
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
		return wait, fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return -1, &NotFoundError{URL: url}

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return -1, &apiErr
		}

		return -1, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}
