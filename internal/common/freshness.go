package common

import "time"

// Freshness TTLs for cached data
const (
	FreshnessCatalog = 5 * time.Minute  // commodity catalog backing autocomplete
	FreshnessSession = 15 * time.Minute // in-flight report sessions
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
