package interfaces

import (
	"context"

	"github.com/folioworks/folio/internal/models"
)

// PortfolioStore owns durable portfolio records.
type PortfolioStore interface {
	List(ctx context.Context, userID string) ([]models.Portfolio, error)
	Get(ctx context.Context, id string) (*models.Portfolio, error)
	Create(ctx context.Context, p *models.Portfolio) error
	Delete(ctx context.Context, id string) error
}

// HoldingStore owns the durable list of holdings per portfolio.
// All writes are last-write-wins; a failed write leaves prior state unchanged.
type HoldingStore interface {
	List(ctx context.Context, portfolioID string) ([]models.Holding, error)
	Get(ctx context.Context, id string) (*models.Holding, error)
	Create(ctx context.Context, portfolioID string, fields models.HoldingFields) (*models.Holding, error)
	Update(ctx context.Context, id string, fields models.HoldingFields) (*models.Holding, error)
	Delete(ctx context.Context, id string) error
}

// ReportStore owns saved report history.
type ReportStore interface {
	List(ctx context.Context, userID string) ([]models.ReportDocument, error)
	Get(ctx context.Context, id string) (*models.ReportDocument, error)
	Save(ctx context.Context, r *models.ReportDocument) error
	Delete(ctx context.Context, id string) error
}

// QuoteProvider resolves a single ticker into a normalized quote.
// Implementations never return an error to the caller: upstream failures
// come back as an error-flagged fallback Quote.
type QuoteProvider interface {
	GetQuote(ctx context.Context, ticker string) models.Quote
}
