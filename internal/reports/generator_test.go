package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/folioworks/folio/internal/models"
)

func sampleValuation() *models.PortfolioValuation {
	return &models.PortfolioValuation{
		PortfolioID:  "p1",
		Name:         "Growth",
		TotalValue:   2500,
		TotalCost:    1750,
		TotalPnL:     750,
		TotalPnLPct:  42.857142857142854,
		DayChange:    25,
		DayChangePct: 1.0101010101010102,
		Holdings: []models.EnrichedHolding{
			{
				ID: "h1", Ticker: "AAPL", Shares: 10, AvgCost: 100, Sector: "Technology",
				CurrentPrice: 150, MarketValue: 1500, CostBasis: 1000,
				UnrealizedPnL: 500, UnrealizedPnLPct: 50,
				DayChange: 30, DayChangePct: 2.04, Weight: 60,
			},
			{
				ID: "h2", Ticker: "MSFT", Shares: 5, AvgCost: 150, Sector: "Technology",
				CurrentPrice: 200, MarketValue: 1000, CostBasis: 750,
				UnrealizedPnL: 250, UnrealizedPnLPct: 33.33,
				DayChange: -5, DayChangePct: -0.5, Weight: 40,
			},
		},
		LastUpdated: time.Now(),
	}
}

func TestGenerate_InvalidInputs(t *testing.T) {
	if _, err := Generate(models.ReportMorning, "u1", nil); err == nil {
		t.Error("expected an error for nil valuation")
	}
	if _, err := Generate(models.ReportType("quarterly"), "u1", sampleValuation()); err == nil {
		t.Error("expected an error for unknown report type")
	}
}

func TestGenerate_Morning(t *testing.T) {
	doc, err := Generate(models.ReportMorning, "u1", sampleValuation())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if doc.Type != models.ReportMorning {
		t.Errorf("expected morning type, got %s", doc.Type)
	}
	if doc.UserID != "u1" || doc.PortfolioID != "p1" {
		t.Errorf("ownership fields wrong: %+v", doc)
	}
	if doc.ID == "" || doc.GeneratedAt.IsZero() {
		t.Error("expected id and timestamp to be stamped")
	}
	if len(doc.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(doc.Sections))
	}

	overview := doc.Sections[0]
	if !strings.Contains(overview.Content, "$2,500.00") {
		t.Errorf("overview prose must carry the total value, got %q", overview.Content)
	}
	if got := metricValue(t, overview, "Unrealized P&L"); got != "+$750.00" {
		t.Errorf("unrealized pnl metric: expected +$750.00, got %q", got)
	}

	sectors := doc.Sections[2]
	if got := metricValue(t, sectors, "Technology"); got != "100.00%" {
		t.Errorf("sector weight: expected 100.00%%, got %q", got)
	}
}

func TestGenerate_Evening(t *testing.T) {
	doc, err := Generate(models.ReportEvening, "u1", sampleValuation())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	summary := doc.Sections[0]
	if got := metricValue(t, summary, "Day Change"); got != "+$25.00" {
		t.Errorf("day change metric: expected +$25.00, got %q", got)
	}

	perf := doc.Sections[1]
	if len(perf.Items) != 2 {
		t.Fatalf("expected one line per position, got %d", len(perf.Items))
	}
	// Largest position first.
	if !strings.HasPrefix(perf.Items[0], "AAPL:") {
		t.Errorf("expected AAPL first, got %q", perf.Items[0])
	}
	if !strings.Contains(perf.Items[1], "-$5.00") {
		t.Errorf("MSFT line must carry its negative day change, got %q", perf.Items[1])
	}
}

func TestGenerate_Weekly(t *testing.T) {
	doc, err := Generate(models.ReportWeekly, "u1", sampleValuation())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	summary := doc.Sections[0]
	if got := metricValue(t, summary, "Avg Position Size"); got != "$1,250.00" {
		t.Errorf("avg position size: expected $1,250.00, got %q", got)
	}
	if got := metricValue(t, summary, "Largest Sector"); !strings.HasPrefix(got, "Technology") {
		t.Errorf("largest sector: expected Technology, got %q", got)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	v := sampleValuation()
	a, err := Generate(models.ReportWeekly, "u1", v)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := Generate(models.ReportWeekly, "u1", v)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(a.Sections) != len(b.Sections) {
		t.Fatalf("section count differs: %d vs %d", len(a.Sections), len(b.Sections))
	}
	for i := range a.Sections {
		if a.Sections[i].Content != b.Sections[i].Content {
			t.Errorf("section %d prose differs between identical runs", i)
		}
		if len(a.Sections[i].Metrics) != len(b.Sections[i].Metrics) {
			t.Fatalf("section %d metric count differs", i)
		}
		for j := range a.Sections[i].Metrics {
			if a.Sections[i].Metrics[j] != b.Sections[i].Metrics[j] {
				t.Errorf("section %d metric %d differs between identical runs", i, j)
			}
		}
	}
}

func metricValue(t *testing.T, section models.ReportSection, label string) string {
	t.Helper()
	for _, m := range section.Metrics {
		if m.Label == label {
			return m.Value
		}
	}
	t.Fatalf("section %q has no metric %q", section.Title, label)
	return ""
}
