package scrape

import (
	"errors"
	"fmt"
)

// FetchError represents a failed fetch: network error or non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch failed: status %d (url: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch failed: %v (url: %s)", e.Err, e.URL)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a fetch that exceeded the configured timeout.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch timed out (url: %s)", e.URL)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// RateLimitError represents a 429 response from the upstream site.
type RateLimitError struct {
	URL string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by upstream (url: %s)", e.URL)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsRateLimited reports whether err is (or wraps) a RateLimitError.
func IsRateLimited(err error) bool {
	var re *RateLimitError
	return errors.As(err, &re)
}
