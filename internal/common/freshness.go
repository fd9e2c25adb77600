// Package common provides shared utilities for Folio
package common

import "time"

// Timing policy for the quote pipeline. Earlier revisions ran a 30-second
// refresh with no request delay and tripped upstream rate limits constantly;
// the current values trade staleness for reliability.
const (
	// FreshnessQuote is the maximum age at which a cached quote is still
	// served without a refetch.
	FreshnessQuote = 15 * time.Minute

	// QuoteRequestDelay is the minimum spacing between consecutive upstream
	// quote calls.
	QuoteRequestDelay = 1 * time.Second

	// BulkRefreshInterval is the minimum spacing between whole-batch
	// refreshes. Guards against redundant bulk calls from rapid re-renders.
	BulkRefreshInterval = 30 * time.Second

	// PeriodicRefresh is how often an active portfolio view refreshes its
	// quotes in the background.
	PeriodicRefresh = 5 * time.Minute

	// RecomputeDebounce collapses rapid valuation triggers (holdings edit
	// plus quote arrival) into a single recompute.
	RecomputeDebounce = 300 * time.Millisecond
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
