// Package market fronts the market scrape client with a freshness-guarded
// catalog cache so autocomplete does not re-scrape per keystroke.
package market

import (
	"context"
	"sync"
	"time"

	"github.com/calriss/corsair/internal/clients/uex"
	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/models"
)

// MaxSearchResults caps autocomplete responses.
const MaxSearchResults = 25

// Service implements MarketService
type Service struct {
	client     interfaces.MarketClient
	logger     *common.Logger
	catalogTTL time.Duration

	mu        sync.Mutex
	catalog   []models.Commodity
	fetchedAt time.Time
}

// NewService creates a new market service
func NewService(client interfaces.MarketClient, catalogTTL time.Duration, logger *common.Logger) *Service {
	if catalogTTL <= 0 {
		catalogTTL = common.FreshnessCatalog
	}
	return &Service{
		client:     client,
		logger:     logger,
		catalogTTL: catalogTTL,
	}
}

// Catalog returns the commodity catalog, re-scraping only when the cached
// snapshot has gone stale.
func (s *Service) Catalog(ctx context.Context) ([]models.Commodity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if common.IsFresh(s.fetchedAt, s.catalogTTL) {
		return s.catalog, nil
	}

	catalog, err := s.client.ListCommodities(ctx)
	if err != nil {
		// A stale catalog beats no catalog for autocomplete.
		if len(s.catalog) > 0 {
			s.logger.Warn().Err(err).Msg("Catalog refresh failed, serving stale snapshot")
			return s.catalog, nil
		}
		return nil, err
	}

	s.catalog = catalog
	s.fetchedAt = time.Now()
	s.logger.Debug().Int("count", len(catalog)).Msg("Commodity catalog refreshed")

	return catalog, nil
}

// Search returns up to limit ranked matches for an autocomplete query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Commodity, error) {
	if limit < 1 || limit > MaxSearchResults {
		limit = MaxSearchResults
	}

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	return uex.RankMatches(catalog, query, limit), nil
}

// PriceCheck fetches a fresh price quote for one commodity. Quotes are
// never cached — valuation uses the latest snapshot.
func (s *Service) PriceCheck(ctx context.Context, slug string) (*models.PriceQuote, error) {
	return s.client.GetPriceQuote(ctx, slug)
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
