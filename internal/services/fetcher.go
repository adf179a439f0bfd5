package services

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// FetchResult is one fetched listing page with its timing metadata
type FetchResult struct {
	URL        string        `json:"url"`
	HTML       string        `json:"-"`
	StatusCode int           `json:"status_code"`
	Length     int           `json:"length"`
	FetchedAt  time.Time     `json:"fetched_at"`
	Duration   time.Duration `json:"duration_ms"`
	Attempts   int           `json:"attempts"`
}

// RetryConfig defines retry behavior for failed requests
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// FetcherService downloads event listing pages. Listing sites run
// anti-scraping layers, so the fetcher rotates realistic user agents
// and retries transient failures with backoff.
type FetcherService struct {
	httpClient  *http.Client
	userAgents  []string
	retryConfig RetryConfig
}

// NewFetcherService creates a fetcher with production defaults
func NewFetcherService() *FetcherService {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		IdleConnTimeout: 90 * time.Second,
	}

	return &FetcherService{
		httpClient: &http.Client{
			Timeout:   45 * time.Second,
			Transport: transport,
		},
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		retryConfig: RetryConfig{
			MaxRetries:    3,
			InitialDelay:  1 * time.Second,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2.0,
		},
	}
}

// NewFetcherServiceWithTimeout creates a fetcher with a custom timeout
func NewFetcherServiceWithTimeout(timeout time.Duration) *FetcherService {
	fetcher := NewFetcherService()
	fetcher.httpClient.Timeout = timeout
	return fetcher
}

// FetchPage downloads one listing page as raw HTML
func (f *FetcherService) FetchPage(ctx context.Context, url string) (*FetchResult, error) {
	if url == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= f.retryConfig.MaxRetries; attempt++ {
		result, err := f.attemptFetch(ctx, url, attempt)
		if err == nil {
			result.FetchedAt = start
			result.Duration = time.Since(start)
			result.Attempts = attempt + 1
			return result, nil
		}

		lastErr = err

		// Client errors won't improve on retry
		if strings.Contains(err.Error(), "status 4") {
			break
		}

		if attempt < f.retryConfig.MaxRetries {
			select {
			case <-time.After(f.calculateDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", f.retryConfig.MaxRetries+1, lastErr)
}

func (f *FetcherService) attemptFetch(ctx context.Context, url string, attempt int) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	f.setHeaders(req, attempt)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned status %d for %s", resp.StatusCode, url)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	html := string(body)
	if len(html) < 100 {
		return nil, fmt.Errorf("content too short (%d chars), likely an error page", len(html))
	}

	return &FetchResult{
		URL:        url,
		HTML:       html,
		StatusCode: resp.StatusCode,
		Length:     len(html),
	}, nil
}

func (f *FetcherService) setHeaders(req *http.Request, attempt int) {
	// Rotate user agent on retries
	req.Header.Set("User-Agent", f.userAgents[attempt%len(f.userAgents)])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,es;q=0.8")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	if attempt > 0 {
		req.Header.Set("Cache-Control", "no-cache")
	}
}

func (f *FetcherService) calculateDelay(attempt int) time.Duration {
	delay := float64(f.retryConfig.InitialDelay) * (f.retryConfig.BackoffFactor * float64(attempt+1))
	delay += rand.Float64() * 0.1 * float64(f.retryConfig.InitialDelay)

	if delay > float64(f.retryConfig.MaxDelay) {
		delay = float64(f.retryConfig.MaxDelay)
	}
	return time.Duration(delay)
}
