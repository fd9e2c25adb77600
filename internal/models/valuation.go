// Package models defines data structures for Folio
package models

import "time"

// EnrichedHolding is a Holding joined with its live Quote. Computed on every
// valuation pass and never mutated in place.
type EnrichedHolding struct {
	ID               string  `json:"id"`
	Ticker           string  `json:"ticker"`
	CompanyName      string  `json:"company_name"`
	Shares           float64 `json:"shares"`
	AvgCost          float64 `json:"avg_cost"`
	Sector           string  `json:"sector"`
	CurrentPrice     float64 `json:"current_price"`
	PriceEstimated   bool    `json:"price_estimated"` // true when no quote was available and the price is approximated
	MarketValue      float64 `json:"market_value"`
	CostBasis        float64 `json:"cost_basis"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_percent"`
	DayChange        float64 `json:"day_change"`
	DayChangePct     float64 `json:"day_change_percent"`
	Weight           float64 `json:"weight"` // % of total portfolio market value
}

// PortfolioValuation aggregates enriched holdings into portfolio totals.
type PortfolioValuation struct {
	PortfolioID  string            `json:"portfolio_id"`
	Name         string            `json:"name"`
	TotalValue   float64           `json:"total_value"`
	TotalCost    float64           `json:"total_cost"`
	TotalPnL     float64           `json:"total_pnl"`
	TotalPnLPct  float64           `json:"total_pnl_percent"`
	DayChange    float64           `json:"day_change"`
	DayChangePct float64           `json:"day_change_percent"`
	Holdings     []EnrichedHolding `json:"holdings"`
	LastUpdated  time.Time         `json:"last_updated"`
}
