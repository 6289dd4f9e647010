package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fetcher loads saved result pages, either from disk or over HTTP.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries int
	backoff    func(attempt int) time.Duration
	logger     *zap.Logger
}

type FetchResult struct {
	Source     string
	StatusCode int
	Body       []byte
	Attempts   int
	Duration   time.Duration
}

func NewFetcher(timeout time.Duration, maxRetries int, userAgent string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent:  userAgent,
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    backoffDuration,
		logger:     logger,
	}
}

// IsRemote reports whether source should be fetched over HTTP.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (f *Fetcher) Fetch(ctx context.Context, source string) (*FetchResult, error) {
	if !IsRemote(source) {
		return f.readFile(source)
	}
	return f.fetchURL(ctx, source)
}

func (f *Fetcher) readFile(path string) (*FetchResult, error) {
	start := time.Now()
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", path, err)
	}
	return &FetchResult{
		Source:   path,
		Body:     body,
		Attempts: 1,
		Duration: time.Since(start),
	}, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) (*FetchResult, error) {
	start := time.Now()
	var lastError error
	attempts := 0

	for attempts = 1; attempts <= f.maxRetries; attempts++ {
		f.logger.Debug("fetching page",
			zap.String("url", url),
			zap.Int("attempt", attempts),
			zap.Int("max_retries", f.maxRetries))

		body, status, err := f.get(ctx, url)
		if err == nil {
			return &FetchResult{
				Source:     url,
				StatusCode: status,
				Body:       body,
				Attempts:   attempts,
				Duration:   time.Since(start),
			}, nil
		}

		lastError = err
		if status == http.StatusNotFound || status == http.StatusForbidden {
			break
		}
		if attempts == f.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.backoff(attempts)):
		}
	}

	return nil, fmt.Errorf("fetch %s: gave up after %d attempts: %w", url, attempts, lastError)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return body, resp.StatusCode, nil
}

func backoffDuration(attempt int) time.Duration {
	// 1s, 2s, 4s ... capped at 30s
	backoff := time.Duration(1<<uint(attempt-1)) * time.Second
	if backoff > 30*time.Second {
		return 30 * time.Second
	}
	return backoff
}
