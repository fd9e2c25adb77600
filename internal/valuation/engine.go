// Package valuation computes portfolio market values from holdings and quotes.
// All functions are pure: identical inputs produce identical outputs except
// for the LastUpdated stamp.
package valuation

import (
	"time"

	"github.com/folioworks/folio/internal/models"
)

// estimatedPriceMarkup approximates a current price when no quote exists.
// A position with no market data is assumed slightly above cost so the
// dashboard still renders a plausible value instead of zero.
const estimatedPriceMarkup = 1.05

// Compute joins holdings with their quotes and aggregates portfolio totals.
// Quotes are keyed by uppercase ticker. Holdings whose ticker has no usable
// quote get an estimated price (avg cost plus a small markup) and are marked
// PriceEstimated. Returns nil when the portfolio is nil or has no holdings.
func Compute(portfolio *models.Portfolio, holdings []models.Holding, quotes map[string]models.Quote) *models.PortfolioValuation {
	if portfolio == nil || len(holdings) == 0 {
		return nil
	}

	enriched := make([]models.EnrichedHolding, 0, len(holdings))
	var totalValue, totalCost, dayChange float64

	for _, h := range holdings {
		e := enrich(h, quotes)
		totalValue += e.MarketValue
		totalCost += e.CostBasis
		dayChange += e.DayChange
		enriched = append(enriched, e)
	}

	// Weights need the final total, so they are assigned in a second pass.
	for i := range enriched {
		enriched[i].Weight = pct(enriched[i].MarketValue, totalValue)
	}

	return &models.PortfolioValuation{
		PortfolioID:  portfolio.ID,
		Name:         portfolio.Name,
		TotalValue:   totalValue,
		TotalCost:    totalCost,
		TotalPnL:     totalValue - totalCost,
		TotalPnLPct:  pct(totalValue-totalCost, totalCost),
		DayChange:    dayChange,
		DayChangePct: pct(dayChange, totalValue),
		Holdings:     enriched,
		LastUpdated:  time.Now(),
	}
}

func enrich(h models.Holding, quotes map[string]models.Quote) models.EnrichedHolding {
	e := models.EnrichedHolding{
		ID:          h.ID,
		Ticker:      h.Ticker,
		CompanyName: h.CompanyName,
		Shares:      h.Shares,
		AvgCost:     h.AvgCost,
		Sector:      h.Sector,
		CostBasis:   h.CostBasis(),
	}

	quote, ok := quotes[h.Ticker]
	if ok && quote.OK() {
		e.CurrentPrice = quote.CurrentPrice
	} else {
		e.CurrentPrice = h.AvgCost * estimatedPriceMarkup
		e.PriceEstimated = true
	}

	e.MarketValue = e.CurrentPrice * h.Shares
	e.UnrealizedPnL = e.MarketValue - e.CostBasis
	e.UnrealizedPnLPct = pct(e.UnrealizedPnL, e.CostBasis)

	// Day movement comes from the quote's percent change; estimated
	// positions have no market data to move on.
	if !e.PriceEstimated {
		e.DayChangePct = quote.ChangePct
		e.DayChange = e.MarketValue * quote.ChangePct / 100
	}
	return e
}

// SectorWeights aggregates holding weights by sector. Holdings without a
// sector are grouped under "Unclassified".
func SectorWeights(v *models.PortfolioValuation) map[string]float64 {
	if v == nil {
		return nil
	}
	weights := make(map[string]float64)
	for _, h := range v.Holdings {
		sector := h.Sector
		if sector == "" {
			sector = "Unclassified"
		}
		weights[sector] += h.Weight
	}
	return weights
}

// pct returns part as a percentage of whole, or 0 when whole is 0.
func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
