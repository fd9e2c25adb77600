// Package models defines data structures for Folio
package models

import "time"

// ReportType selects which narrative report to generate
type ReportType string

const (
	ReportMorning ReportType = "morning"
	ReportEvening ReportType = "evening"
	ReportWeekly  ReportType = "weekly"
)

// Valid returns true for a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportMorning, ReportEvening, ReportWeekly:
		return true
	}
	return false
}

// ReportDocument is a stored narrative report for a portfolio
type ReportDocument struct {
	ID          string          `json:"id" badgerhold:"key"`
	UserID      string          `json:"user_id" badgerhold:"index"`
	PortfolioID string          `json:"portfolio_id"`
	Type        ReportType      `json:"type"`
	Title       string          `json:"title"`
	Sections    []ReportSection `json:"sections"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// ReportSection is one titled block of a report with mixed content
type ReportSection struct {
	Title   string         `json:"title"`
	Content string         `json:"content,omitempty"` // prose
	Metrics []ReportMetric `json:"metrics,omitempty"` // key-value pairs
	Items   []string       `json:"items,omitempty"`   // bullet list
}

// ReportMetric is a labelled value within a report section
type ReportMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
