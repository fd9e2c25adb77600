// Package reports renders templated narrative reports from a portfolio
// valuation. All prose and metrics derive from computed values, so a report
// generated twice from the same valuation is identical apart from the
// generation timestamp.
package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
	"github.com/folioworks/folio/internal/valuation"
)

const largestPositionCount = 5

// Generate builds the requested report for a valuation. Returns an error for
// an unknown report type or a nil valuation.
func Generate(reportType models.ReportType, userID string, v *models.PortfolioValuation) (*models.ReportDocument, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot generate a report without a valuation")
	}
	if !reportType.Valid() {
		return nil, fmt.Errorf("unknown report type: %q", reportType)
	}

	doc := &models.ReportDocument{
		ID:          uuid.New().String(),
		UserID:      userID,
		PortfolioID: v.PortfolioID,
		Type:        reportType,
		GeneratedAt: time.Now(),
	}

	switch reportType {
	case models.ReportMorning:
		doc.Title = "Morning Market Brief & Portfolio Analysis"
		doc.Sections = morningSections(v)
	case models.ReportEvening:
		doc.Title = "Market Close Analysis & Portfolio Performance"
		doc.Sections = eveningSections(v)
	case models.ReportWeekly:
		doc.Title = "Weekly Portfolio Review & Market Analysis"
		doc.Sections = weeklySections(v)
	}
	return doc, nil
}

func morningSections(v *models.PortfolioValuation) []models.ReportSection {
	sectors := sortedSectors(v)
	largest := largestPositions(v)

	overview := fmt.Sprintf(
		"Your portfolio of %d positions, currently valued at %s, is allocated across %d sectors. "+
			"Unrealized gain stands at %s (%s of cost basis) going into today's session.",
		len(v.Holdings), common.FormatMoney(v.TotalValue), len(sectors),
		common.FormatSignedMoney(v.TotalPnL), common.FormatSignedPct(v.TotalPnLPct))

	status := fmt.Sprintf(
		"Your largest position, %s, represents %s of total portfolio value. "+
			"Average position size is %s across %d holdings.",
		topTicker(largest), common.FormatPct(topWeight(largest)),
		common.FormatMoney(averagePositionSize(v)), len(v.Holdings))

	return []models.ReportSection{
		{
			Title:   "Pre-Market Portfolio Overview",
			Content: overview,
			Metrics: []models.ReportMetric{
				{Label: "Total Value", Value: common.FormatMoney(v.TotalValue)},
				{Label: "Cost Basis", Value: common.FormatMoney(v.TotalCost)},
				{Label: "Unrealized P&L", Value: common.FormatSignedMoney(v.TotalPnL)},
				{Label: "Positions", Value: fmt.Sprintf("%d", len(v.Holdings))},
			},
		},
		{
			Title:   "Strategic Positioning",
			Content: status,
			Items:   positionLines(largest),
		},
		sectorSection(sectors),
		{
			Title:   "Today's Monitoring Priorities",
			Content: "Positions carrying the largest portfolio weight deserve the closest attention through today's session.",
			Items:   watchList(largest),
		},
	}
}

func eveningSections(v *models.PortfolioValuation) []models.ReportSection {
	largest := largestPositions(v)

	summary := fmt.Sprintf(
		"Today's session moved your portfolio by %s (%s). "+
			"Total value closed at %s against a cost basis of %s.",
		common.FormatSignedMoney(v.DayChange), common.FormatSignedPct(v.DayChangePct),
		common.FormatMoney(v.TotalValue), common.FormatMoney(v.TotalCost))

	perf := make([]string, 0, len(largest))
	for _, h := range largest {
		perf = append(perf, fmt.Sprintf("%s: %s today (%s), market value %s",
			h.Ticker, common.FormatSignedMoney(h.DayChange),
			common.FormatSignedPct(h.DayChangePct), common.FormatMoney(h.MarketValue)))
	}

	return []models.ReportSection{
		{
			Title:   "Market Close Summary",
			Content: summary,
			Metrics: []models.ReportMetric{
				{Label: "Day Change", Value: common.FormatSignedMoney(v.DayChange)},
				{Label: "Day Change %", Value: common.FormatSignedPct(v.DayChangePct)},
				{Label: "Total Value", Value: common.FormatMoney(v.TotalValue)},
			},
		},
		{
			Title:   "Position Performance",
			Content: "Per-position contribution to today's move, largest holdings first.",
			Items:   perf,
		},
		{
			Title:   "Tomorrow's Setup",
			Content: "Pre-market activity in your heaviest positions will set the tone for tomorrow's open.",
			Items:   watchList(largest),
		},
	}
}

func weeklySections(v *models.PortfolioValuation) []models.ReportSection {
	sectors := sortedSectors(v)
	largest := largestPositions(v)

	summary := fmt.Sprintf(
		"Your %d-position portfolio is valued at %s with an unrealized gain of %s (%s). "+
			"Position sizing remains disciplined, with the largest holding at %s of total value.",
		len(v.Holdings), common.FormatMoney(v.TotalValue),
		common.FormatSignedMoney(v.TotalPnL), common.FormatSignedPct(v.TotalPnLPct),
		common.FormatPct(topWeight(largest)))

	metrics := []models.ReportMetric{
		{Label: "Total Value", Value: common.FormatMoney(v.TotalValue)},
		{Label: "Unrealized P&L", Value: common.FormatSignedMoney(v.TotalPnL)},
		{Label: "Position Count", Value: fmt.Sprintf("%d", len(v.Holdings))},
		{Label: "Avg Position Size", Value: common.FormatMoney(averagePositionSize(v))},
	}
	if len(sectors) > 0 {
		metrics = append(metrics, models.ReportMetric{
			Label: "Largest Sector",
			Value: fmt.Sprintf("%s (%s allocation)", sectors[0].name, common.FormatPct(sectors[0].weight)),
		})
	}

	return []models.ReportSection{
		{
			Title:   "Weekly Performance Summary",
			Content: summary,
			Metrics: metrics,
		},
		{
			Title:   "Holdings Deep Dive",
			Content: "Each position reviewed against its cost basis and current portfolio weight.",
			Items:   positionLines(largest),
		},
		sectorSection(sectors),
		{
			Title:   "Week Ahead",
			Content: "Watch your heaviest positions for earnings dates and guidance updates in the coming week.",
			Items:   watchList(largest),
		},
	}
}

type sectorWeight struct {
	name   string
	weight float64
}

// sortedSectors lists sector weights heaviest first, names breaking ties so
// the ordering is stable.
func sortedSectors(v *models.PortfolioValuation) []sectorWeight {
	byName := valuation.SectorWeights(v)
	sectors := make([]sectorWeight, 0, len(byName))
	for name, weight := range byName {
		sectors = append(sectors, sectorWeight{name: name, weight: weight})
	}
	sort.Slice(sectors, func(i, j int) bool {
		if sectors[i].weight != sectors[j].weight {
			return sectors[i].weight > sectors[j].weight
		}
		return sectors[i].name < sectors[j].name
	})
	return sectors
}

func sectorSection(sectors []sectorWeight) models.ReportSection {
	metrics := make([]models.ReportMetric, 0, len(sectors))
	for _, s := range sectors {
		metrics = append(metrics, models.ReportMetric{Label: s.name, Value: common.FormatPct(s.weight)})
	}
	return models.ReportSection{
		Title:   "Sector Exposure",
		Content: "Portfolio weight by sector, heaviest allocation first.",
		Metrics: metrics,
	}
}

// largestPositions returns the top holdings by market value, ticker breaking
// ties so equal-value holdings order deterministically.
func largestPositions(v *models.PortfolioValuation) []models.EnrichedHolding {
	sorted := make([]models.EnrichedHolding, len(v.Holdings))
	copy(sorted, v.Holdings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MarketValue != sorted[j].MarketValue {
			return sorted[i].MarketValue > sorted[j].MarketValue
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})
	if len(sorted) > largestPositionCount {
		sorted = sorted[:largestPositionCount]
	}
	return sorted
}

func positionLines(holdings []models.EnrichedHolding) []string {
	lines := make([]string, 0, len(holdings))
	for _, h := range holdings {
		lines = append(lines, fmt.Sprintf("%s: %g shares at %s avg cost, market value %s (%s of portfolio)",
			h.Ticker, h.Shares, common.FormatMoney(h.AvgCost),
			common.FormatMoney(h.MarketValue), common.FormatPct(h.Weight)))
	}
	return lines
}

func watchList(holdings []models.EnrichedHolding) []string {
	n := len(holdings)
	if n > 3 {
		n = 3
	}
	items := make([]string, 0, n)
	for _, h := range holdings[:n] {
		items = append(items, fmt.Sprintf("Monitor %s (%s of portfolio) for price movements or volume spikes.",
			h.Ticker, common.FormatPct(h.Weight)))
	}
	return items
}

func topTicker(largest []models.EnrichedHolding) string {
	if len(largest) == 0 {
		return "N/A"
	}
	return largest[0].Ticker
}

func topWeight(largest []models.EnrichedHolding) float64 {
	if len(largest) == 0 {
		return 0
	}
	return largest[0].Weight
}

func averagePositionSize(v *models.PortfolioValuation) float64 {
	if len(v.Holdings) == 0 {
		return 0
	}
	return v.TotalValue / float64(len(v.Holdings))
}
