// Package interfaces defines service contracts for Corsair
package interfaces

import (
	"context"

	"github.com/calriss/corsair/internal/models"
)

// MarketClient resolves commodity and price data from the market site.
type MarketClient interface {
	// ListCommodities fetches and parses the full commodity catalog.
	// It does not partially return: any fetch failure surfaces an error.
	ListCommodities(ctx context.Context) ([]models.Commodity, error)

	// GetPriceQuote fetches the sell-location table for one commodity.
	// A page with zero parsed rows yields an empty quote, not an error.
	GetPriceQuote(ctx context.Context, slug string) (*models.PriceQuote, error)
}

// ProfileClient resolves citizen profiles and org membership chains.
type ProfileClient interface {
	// GetProfile fetches a citizen profile and its organizations sub-page.
	// A missing profile surfaces *rsi.ProfileNotFoundError.
	GetProfile(ctx context.Context, handle string) (*models.ProfileRecord, error)
}
