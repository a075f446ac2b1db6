package uex

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/calriss/corsair/internal/models"
)

// Match-score tiers, highest first. The total order matters: autocomplete
// ranking across the whole catalog depends on it.
const (
	scoreExactCode     = 100
	scoreExactName     = 95
	scoreCodePrefix    = 90
	scoreCodeSubstring = 85
	scoreNamePrefix    = 80
	scoreWordPrefix    = 70
	scoreWordSubstring = 60
	scoreNameSubstring = 50
	scoreSlugSubstring = 40
	scoreNoMatch       = 0
)

// MatchScore ranks how well a commodity matches an autocomplete query:
// exact code > exact name > code prefix > code substring > name prefix >
// any-word prefix > any-word substring > name substring > slug substring.
func MatchScore(c models.Commodity, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return scoreNoMatch
	}

	code := strings.ToLower(c.Code)
	name := strings.ToLower(c.Name)
	slug := strings.ToLower(c.Slug)

	switch {
	case code == q:
		return scoreExactCode
	case name == q:
		return scoreExactName
	case strings.HasPrefix(code, q):
		return scoreCodePrefix
	case strings.Contains(code, q):
		return scoreCodeSubstring
	case strings.HasPrefix(name, q):
		return scoreNamePrefix
	}

	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, q) {
			return scoreWordPrefix
		}
	}
	for _, word := range strings.Fields(name) {
		if strings.Contains(word, q) {
			return scoreWordSubstring
		}
	}

	switch {
	case strings.Contains(name, q):
		return scoreNameSubstring
	case strings.Contains(slug, q):
		return scoreSlugSubstring
	}

	return scoreNoMatch
}

// RankMatches returns the commodities matching query, best score first,
// capped at limit. Ties keep the original catalog order.
func RankMatches(commodities []models.Commodity, query string, limit int) []models.Commodity {
	type scored struct {
		commodity models.Commodity
		score     int
	}

	var matches []scored
	for _, c := range commodities {
		if score := MatchScore(c, query); score > scoreNoMatch {
			matches = append(matches, scored{commodity: c, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]models.Commodity, len(matches))
	for i, m := range matches {
		result[i] = m.commodity
	}
	return result
}

// FormatPrice renders a price with thousands grouping and no currency
// symbol. Fractional cents are kept to two places when present.
func FormatPrice(n float64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	// Round to cents first so a fraction like .999 carries into the whole
	// part instead of rendering as ".00" with the carry dropped.
	n = math.Round(n*100) / 100

	whole := int64(n)
	frac := n - float64(whole)

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String()

	if frac >= 0.005 {
		cents := strconv.FormatFloat(frac, 'f', 2, 64)
		out += cents[1:] // strip leading "0"
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatLocationName applies cosmetic rewrites to a scraped location name.
// Purely presentational — never used for matching or joins.
func FormatLocationName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "Trade and Development Division", "TDD")
	name = strings.TrimSuffix(name, " Space Station")
	return strings.TrimSpace(name)
}
