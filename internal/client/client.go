package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// NetworkError is returned when a page could not be fetched. Status is zero when
// no response was received.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Config holds client tuning
type Config struct {
	Timeout        time.Duration
	MaxConcurrency int
	MaxRetries     int
	RetryDelay     time.Duration
	UserAgent      string
}

// Client fetches HTML pages from the source site
type Client struct {
	httpClient  *http.Client
	userAgent   string
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a page client with retries and a concurrency cap
func NewClient(cfg Config) *Client {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	rateLimiter := make(chan struct{}, cfg.MaxConcurrency)
	for i := 0; i < cfg.MaxConcurrency; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		userAgent:   cfg.UserAgent,
		rateLimiter: rateLimiter,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Get fetches url with retry logic and rate limiting. page labels the request in metrics.
func (c *Client) Get(ctx context.Context, page, url string) ([]byte, error) {
	start := time.Now()
	body, status, err := c.get(ctx, url)

	label := strconv.Itoa(status)
	if err != nil && status == 0 {
		label = "error"
	}
	metrics.RecordSourceFetch(page, label, time.Since(start).Seconds())

	return body, err
}

// Document fetches url and parses it as HTML
func (c *Client) Document(ctx context.Context, page, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, page, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	var lastErr error
	var lastStatus int
	var retryAfter time.Duration

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s unless the server asked for longer
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			if retryAfter > backoff {
				backoff = retryAfter
			}
			backoff += time.Duration(rand.Intn(250)) * time.Millisecond

			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying page request after backoff")

			select {
			case <-ctx.Done():
				return nil, lastStatus, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, status, wait, err := c.attempt(ctx, url)
		if err == nil {
			return body, status, nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return nil, status, err
		}
		lastErr, lastStatus, retryAfter = retryable.err, status, wait

		if ctx.Err() != nil {
			return nil, status, ctx.Err()
		}
	}

	return nil, lastStatus, lastErr
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }

// attempt performs a single request holding one rate limiter slot
func (c *Client) attempt(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	select {
	case <-ctx.Done():
		return nil, 0, 0, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log.Debug().
		Str("url", url).
		Msg("Making page request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, 0, ctx.Err()
		}
		return nil, 0, 0, &retryableError{&NetworkError{URL: url, Err: err}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, 0, &retryableError{&NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("size", len(body)).
			Msg("Page request successful")
		return body, resp.StatusCode, 0, nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Received retryable status")
		return nil, resp.StatusCode, retryAfterDelay(resp.Header.Get("Retry-After")),
			&retryableError{&NetworkError{URL: url, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}}

	default:
		return nil, resp.StatusCode, 0, &NetworkError{URL: url, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
}

// retryAfterDelay understands the delay-seconds form of Retry-After
func retryAfterDelay(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
