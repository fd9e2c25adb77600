// Package models defines data structures for Folio
package models

import "time"

// Quote holds a point-in-time price snapshot for a ticker from the upstream
// provider. Quotes are ephemeral: cached transiently, never stored as a
// durable entity.
type Quote struct {
	Ticker       string    `json:"ticker"`
	CurrentPrice float64   `json:"current_price"`
	Change       float64   `json:"change"`         // absolute change from previous close
	ChangePct    float64   `json:"change_percent"` // percentage change from previous close
	Volume       int64     `json:"volume"`
	MarketCap    float64   `json:"market_cap"`
	PE           float64   `json:"pe"`
	High52Week   float64   `json:"high_52_week"`
	Low52Week    float64   `json:"low_52_week"`
	Timestamp    time.Time `json:"timestamp"`
	Stale        bool      `json:"stale,omitempty"` // served from an expired cache entry after a failed refresh
	Error        string    `json:"error,omitempty"` // human-readable cause when the fetch failed
}

// OK reports whether the quote carries a usable price. Stale quotes still
// qualify; error-flagged or zero-priced quotes are placeholders, not
// market data.
func (q Quote) OK() bool {
	return q.Error == "" && q.CurrentPrice > 0
}
