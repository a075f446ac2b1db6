// Package models defines data structures for Corsair
package models

// Commodity is one entry in the scraped commodity catalog.
// Catalog snapshots are recomputed per scrape and never persisted.
type Commodity struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	AveragePrice     float64 `json:"average_price,omitempty"`
	PriceUnavailable bool    `json:"price_unavailable"`
}

// PriceStats holds the price columns of a sell-location row.
type PriceStats struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     float64 `json:"avg"`
}

// InventoryStats holds the SCU inventory columns of a sell-location row.
type InventoryStats struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     float64 `json:"avg"`
}

// LocationPrice is one parsed sell-location row for a commodity.
type LocationPrice struct {
	Name               string         `json:"name"`
	Orbit              string         `json:"orbit"`
	System             string         `json:"system"`
	Faction            string         `json:"faction,omitempty"`
	Price              PriceStats     `json:"price"`
	Inventory          InventoryStats `json:"inventory"`
	ContainerSizes     []int          `json:"container_sizes"`
	IsNoQuestionsAsked bool           `json:"is_no_questions_asked"`
}

// BoxInfo carries per-box economics for a commodity.
type BoxInfo struct {
	UnitsPerBox int `json:"units_per_box"`
}

// DefaultUnitsPerBox is used when the commodity page does not state box size.
const DefaultUnitsPerBox = 100

// PriceQuote is a transient snapshot of where a commodity sells, best first.
// BestLocation is nil and AveragePrice is nil when no rows parsed — callers
// must handle the empty case explicitly.
type PriceQuote struct {
	Slug         string          `json:"slug"`
	BestLocation *LocationPrice  `json:"best_location,omitempty"`
	AveragePrice *float64        `json:"average_price,omitempty"`
	AllLocations []LocationPrice `json:"all_locations"`
	BoxInfo      BoxInfo         `json:"box_info"`
}
