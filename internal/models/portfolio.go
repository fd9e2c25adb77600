// Package models defines data structures for Folio
package models

import "time"

// Portfolio represents a named collection of holdings owned by a user
type Portfolio struct {
	ID          string    `json:"id" badgerhold:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id" badgerhold:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Holding represents a recorded position in a ticker within a portfolio
type Holding struct {
	ID           string    `json:"id" badgerhold:"key"`
	PortfolioID  string    `json:"portfolio_id" badgerhold:"index"`
	Ticker       string    `json:"ticker"`
	CompanyName  string    `json:"company_name"`
	Shares       float64   `json:"shares"`   // fractional shares allowed
	AvgCost      float64   `json:"avg_cost"` // per-share average cost basis
	Sector       string    `json:"sector,omitempty"`
	PurchaseDate time.Time `json:"purchase_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CostBasis returns the total cost of the position (shares × avg cost).
func (h Holding) CostBasis() float64 {
	return h.Shares * h.AvgCost
}

// HoldingFields carries the mutable fields of a holding for create/update
// requests. Pointer fields distinguish "absent" from zero on partial updates.
type HoldingFields struct {
	Ticker       *string    `json:"ticker,omitempty"`
	CompanyName  *string    `json:"company_name,omitempty"`
	Shares       *float64   `json:"shares,omitempty"`
	AvgCost      *float64   `json:"avg_cost,omitempty"`
	Sector       *string    `json:"sector,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
}
