package uex

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/calriss/corsair/internal/models"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// parseCatalog extracts every commodity listing from the catalog page.
// Listings are label-commodity elements; every field is treated as
// possibly absent.
func parseCatalog(doc *goquery.Document) []models.Commodity {
	var commodities []models.Commodity

	doc.Find(".label-commodity").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".name").First().Text())
		if name == "" {
			name = strings.TrimSpace(sel.Text())
		}
		if name == "" {
			return
		}

		slug, ok := sel.Attr("data-slug")
		if !ok || strings.TrimSpace(slug) == "" {
			slug = DeriveSlug(name)
		}

		commodity := models.Commodity{
			Code:             codeFromName(name),
			Name:             name,
			Slug:             strings.TrimSpace(slug),
			PriceUnavailable: true,
		}

		priceText, ok := sel.Attr("data-avg-price")
		if !ok {
			priceText = sel.Find(".avg-price").First().Text()
		}
		if price, ok := parseNumber(priceText); ok && price > 0 {
			commodity.AveragePrice = price
			commodity.PriceUnavailable = false
		}

		commodities = append(commodities, commodity)
	})

	return commodities
}

// parsePriceQuote extracts every #table-sell row into a LocationPrice,
// sorts descending by current price, and computes the average over
// locations with a defined current price. Rows with a missing or zero
// price are excluded from the average but retained in AllLocations.
func parsePriceQuote(doc *goquery.Document, slug string) *models.PriceQuote {
	quote := &models.PriceQuote{
		Slug:    slug,
		BoxInfo: parseBoxInfo(doc),
	}

	doc.Find("#table-sell tbody tr").Each(func(_ int, row *goquery.Selection) {
		loc, ok := parseLocationRow(row)
		if ok {
			quote.AllLocations = append(quote.AllLocations, loc)
		}
	})

	if len(quote.AllLocations) == 0 {
		return quote
	}

	sort.SliceStable(quote.AllLocations, func(i, j int) bool {
		return quote.AllLocations[i].Price.Current > quote.AllLocations[j].Price.Current
	})

	var sum float64
	var priced int
	for _, loc := range quote.AllLocations {
		if loc.Price.Current > 0 {
			sum += loc.Price.Current
			priced++
		}
	}
	if priced > 0 {
		avg := sum / float64(priced)
		quote.AveragePrice = &avg
	}

	quote.BestLocation = &quote.AllLocations[0]

	return quote
}

// parseLocationRow reads one sell-location row, keyed by column position:
// name, orbit, system, faction, price current/min/max/avg, inventory
// current/min/max/avg, container sizes.
func parseLocationRow(row *goquery.Selection) (models.LocationPrice, bool) {
	cells := row.Find("td")
	if cells.Length() == 0 {
		return models.LocationPrice{}, false
	}

	text := func(i int) string {
		if i >= cells.Length() {
			return ""
		}
		return strings.TrimSpace(cells.Eq(i).Text())
	}
	number := func(i int) float64 {
		n, _ := parseNumber(text(i))
		return n
	}

	name := text(0)
	if name == "" {
		return models.LocationPrice{}, false
	}

	loc := models.LocationPrice{
		Name:    name,
		Orbit:   text(1),
		System:  text(2),
		Faction: text(3),
		Price: models.PriceStats{
			Current: number(4),
			Min:     number(5),
			Max:     number(6),
			Avg:     number(7),
		},
		Inventory: models.InventoryStats{
			Current: number(8),
			Min:     number(9),
			Max:     number(10),
			Avg:     number(11),
		},
		ContainerSizes:     parseContainerSizes(text(12)),
		IsNoQuestionsAsked: cells.Eq(0).Find(".nqa-icon").Length() > 0 || row.HasClass("no-questions"),
	}

	return loc, true
}

// parseBoxInfo reads the per-box economics block. Unknown box sizes fall
// back to the default of 100 units.
func parseBoxInfo(doc *goquery.Document) models.BoxInfo {
	info := models.BoxInfo{UnitsPerBox: models.DefaultUnitsPerBox}

	sel := doc.Find("#box-info").First()
	if sel.Length() == 0 {
		return info
	}

	unitsText, ok := sel.Attr("data-units-per-box")
	if !ok {
		unitsText = sel.Text()
	}
	if units, ok := parseLeadingInt(unitsText); ok && units > 0 {
		info.UnitsPerBox = units
	}

	return info
}

// DeriveSlug lowercases a name and collapses non-alphanumeric runs to
// single hyphens.
func DeriveSlug(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// codeFromName derives the commodity code as the first whitespace-delimited
// token of the display name.
func codeFromName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// parseNumber leniently parses a scraped numeric cell. Grouping commas,
// currency suffixes, and surrounding text are tolerated.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "aUEC")
	s = strings.TrimSpace(s)

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Fall back to the first numeric token in mixed text.
		for _, field := range strings.Fields(s) {
			if n, err := strconv.ParseFloat(field, 64); err == nil {
				return n, true
			}
		}
		return 0, false
	}
	return n, true
}

// parseLeadingInt extracts the first integer found in mixed text.
func parseLeadingInt(s string) (int, bool) {
	for _, field := range strings.Fields(strings.ReplaceAll(s, "=", " ")) {
		field = strings.Trim(field, ",.")
		if n, err := strconv.Atoi(field); err == nil {
			return n, true
		}
	}
	return 0, false
}

// parseContainerSizes parses a comma-separated container size list ("1, 2, 4").
func parseContainerSizes(s string) []int {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "SCU"))
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			sizes = append(sizes, n)
		}
	}
	return sizes
}
