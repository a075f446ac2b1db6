// Package uex provides a scrape client for the UEX commodity market site
package uex

import (
	"context"
	"fmt"
	"time"

	"github.com/calriss/corsair/internal/clients/scrape"
	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/models"
)

const (
	DefaultBaseURL   = "https://uexcorp.space"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// Client implements the MarketClient interface by scraping the commodity
// catalog and per-commodity sell-location pages. The markup is keyed by
// element labels and column position and is brittle to upstream changes,
// so all parsing lives in parse.go behind this interface.
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

// NewClient creates a new UEX scrape client.
// No API key is required — these are public pages.
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

// ListCommodities fetches the commodity catalog page and parses every
// listing. Fetch failures surface as-is; the catalog is never partially
// returned.
func (c *Client) ListCommodities(ctx context.Context) ([]models.Commodity, error) {
	url := fmt.Sprintf("%s/commodities", c.baseURL)

	doc, err := c.fetcher.GetDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	commodities := parseCatalog(doc)
	c.logger.Debug().Int("count", len(commodities)).Msg("Parsed commodity catalog")

	return commodities, nil
}

// GetPriceQuote fetches the trading page for one commodity and extracts
// every sell-location row, best price first. A page with zero parsed rows
// yields an empty quote rather than an error — callers must handle it.
func (c *Client) GetPriceQuote(ctx context.Context, slug string) (*models.PriceQuote, error) {
	url := fmt.Sprintf("%s/commodities/%s", c.baseURL, slug)

	doc, err := c.fetcher.GetDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	quote := parsePriceQuote(doc, slug)
	c.logger.Debug().
		Str("slug", slug).
		Int("locations", len(quote.AllLocations)).
		Msg("Parsed price quote")

	return quote, nil
}

// Ensure Client implements MarketClient
var _ interfaces.MarketClient = (*Client)(nil)
