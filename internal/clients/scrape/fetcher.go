// Package scrape provides the shared fetch layer for the upstream HTML
// scrape clients: fixed retry budget, timeout classification, and rate
// limiting. The upstream sites publish no API contract, so everything above
// this layer treats extracted fields as possibly absent.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/calriss/corsair/internal/common"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second
	DefaultAttempts  = 3
	DefaultBackoff   = 1 * time.Second

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Fetcher performs rate-limited GET requests with a fixed retry budget.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *common.Logger
	attempts   int
	backoff    time.Duration
	userAgent  string
}

// Option configures the fetcher
type Option func(*Fetcher)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) Option {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.httpClient.Timeout = timeout
	}
}

// WithAttempts sets the retry budget
func WithAttempts(attempts int) Option {
	return func(f *Fetcher) {
		if attempts > 0 {
			f.attempts = attempts
		}
	}
}

// WithBackoff sets the linear backoff increment between attempts
func WithBackoff(backoff time.Duration) Option {
	return func(f *Fetcher) {
		f.backoff = backoff
	}
}

// NewFetcher creates a fetcher with the default retry budget.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:    common.NewSilentLogger(),
		attempts:  DefaultAttempts,
		backoff:   DefaultBackoff,
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Get fetches a URL, retrying on any failure up to the attempt budget with
// linear backoff. The last classified error is surfaced untouched.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * f.backoff
			f.logger.Debug().Str("url", url).Int("attempt", attempt).Dur("wait", wait).Msg("Retrying fetch")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, &TimeoutError{URL: url, Err: ctx.Err()}
			}
		}

		body, err := f.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	f.logger.Warn().Str("url", url).Int("attempts", f.attempts).Err(lastErr).Msg("Fetch failed after retries")
	return nil, lastErr
}

// GetDocument fetches a URL and parses the body as an HTML document.
func (f *Fetcher) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return doc, nil
}

func (f *Fetcher) getOnce(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &TimeoutError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, &TimeoutError{URL: url, Err: err}
		}
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	f.logger.Debug().Str("url", url).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Fetch")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
