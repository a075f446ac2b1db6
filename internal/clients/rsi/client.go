// Package rsi provides a scrape client for the RSI citizen profile site
package rsi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calriss/corsair/internal/clients/scrape"
	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/models"
)

const (
	DefaultBaseURL   = "https://robertsspaceindustries.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// ProfileNotFoundError indicates the upstream site has no citizen with the
// requested handle. The site returns 200 with a not-found page marker, so
// this is detected from the page, not the HTTP status alone.
type ProfileNotFoundError struct {
	Handle string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile not found: %s", e.Handle)
}

// IsProfileNotFound reports whether err is (or wraps) a ProfileNotFoundError.
func IsProfileNotFound(err error) bool {
	var pe *ProfileNotFoundError
	return errors.As(err, &pe)
}

// Client implements the ProfileClient interface by scraping a citizen
// profile page and its organizations sub-page.
type Client struct {
	baseURL string
	fetcher *scrape.Fetcher
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithFetcher sets the underlying fetcher
func WithFetcher(fetcher *scrape.Fetcher) ClientOption {
	return func(c *Client) {
		c.fetcher = fetcher
	}
}

// NewClient creates a new RSI scrape client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fetcher == nil {
		c.fetcher = scrape.NewFetcher(
			scrape.WithLogger(c.logger),
			scrape.WithTimeout(DefaultTimeout),
			scrape.WithRateLimit(DefaultRateLimit),
		)
	}

	return c
}

// GetProfile fetches a citizen profile and its organizations sub-page.
// A 404 or a not-found page marker both surface ProfileNotFoundError.
func (c *Client) GetProfile(ctx context.Context, handle string) (*models.ProfileRecord, error) {
	profileURL := fmt.Sprintf("%s/citizens/%s", c.baseURL, handle)

	doc, err := c.fetcher.GetDocument(ctx, profileURL)
	if err != nil {
		if isNotFoundStatus(err) {
			return nil, &ProfileNotFoundError{Handle: handle}
		}
		return nil, err
	}

	if hasNotFoundMarker(doc) {
		return nil, &ProfileNotFoundError{Handle: handle}
	}

	profile := parseProfile(doc, handle, c.baseURL)

	orgsURL := fmt.Sprintf("%s/citizens/%s/organizations", c.baseURL, handle)
	orgsDoc, err := c.fetcher.GetDocument(ctx, orgsURL)
	if err != nil {
		if isNotFoundStatus(err) {
			// Profile exists but has no organizations sub-page.
			c.logger.Debug().Str("handle", handle).Msg("No organizations page")
			return profile, nil
		}
		return nil, err
	}

	if !hasNotFoundMarker(orgsDoc) {
		parseOrganizations(orgsDoc, profile, c.baseURL)
	}

	c.logger.Debug().
		Str("handle", handle).
		Bool("has_main_org", profile.MainOrg != nil).
		Int("affiliated", len(profile.AffiliatedOrgs)).
		Msg("Parsed citizen profile")

	return profile, nil
}

func isNotFoundStatus(err error) bool {
	var fe *scrape.FetchError
	return errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound
}

// Ensure Client implements ProfileClient
var _ interfaces.ProfileClient = (*Client)(nil)
