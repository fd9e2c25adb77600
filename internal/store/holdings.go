package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

// HoldingStore persists holdings in BadgerDB.
type HoldingStore struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewHoldingStore creates a holding repository.
func NewHoldingStore(store *badgerhold.Store, logger *common.Logger) *HoldingStore {
	return &HoldingStore{store: store, logger: logger}
}

// List returns all holdings in a portfolio, ordered by ticker.
func (s *HoldingStore) List(_ context.Context, portfolioID string) ([]models.Holding, error) {
	var holdings []models.Holding
	q := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID").SortBy("Ticker")
	if err := s.store.Find(&holdings, q); err != nil {
		return nil, fmt.Errorf("failed to list holdings for portfolio %s: %w", portfolioID, err)
	}
	return holdings, nil
}

// Get returns a holding by id.
func (s *HoldingStore) Get(_ context.Context, id string) (*models.Holding, error) {
	var h models.Holding
	if err := s.store.Get(id, &h); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("holding not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get holding %s: %w", id, err)
	}
	return &h, nil
}

// Create inserts a new holding into a portfolio. Ticker, shares, and avg
// cost are mandatory; the ticker is uppercased before storage.
func (s *HoldingStore) Create(_ context.Context, portfolioID string, fields models.HoldingFields) (*models.Holding, error) {
	if err := validateNewHolding(fields); err != nil {
		return nil, err
	}

	now := time.Now()
	h := models.Holding{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Ticker:      strings.ToUpper(strings.TrimSpace(*fields.Ticker)),
		Shares:      *fields.Shares,
		AvgCost:     *fields.AvgCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if fields.CompanyName != nil {
		h.CompanyName = *fields.CompanyName
	}
	if fields.Sector != nil {
		h.Sector = *fields.Sector
	}
	if fields.PurchaseDate != nil {
		h.PurchaseDate = *fields.PurchaseDate
	}

	if err := s.store.Insert(h.ID, &h); err != nil {
		return nil, fmt.Errorf("failed to create holding %s: %w", h.Ticker, err)
	}

	s.logger.Debug().Str("holding_id", h.ID).Str("ticker", h.Ticker).Msg("holding created")
	return &h, nil
}

// Update applies a partial update to a holding. Absent fields keep their
// prior values; the updated record is written back atomically.
func (s *HoldingStore) Update(ctx context.Context, id string, fields models.HoldingFields) (*models.Holding, error) {
	h, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields.Ticker != nil {
		ticker := strings.ToUpper(strings.TrimSpace(*fields.Ticker))
		if ticker == "" {
			return nil, fmt.Errorf("ticker cannot be empty")
		}
		h.Ticker = ticker
	}
	if fields.CompanyName != nil {
		h.CompanyName = *fields.CompanyName
	}
	if fields.Shares != nil {
		if *fields.Shares < 0 {
			return nil, fmt.Errorf("shares cannot be negative")
		}
		h.Shares = *fields.Shares
	}
	if fields.AvgCost != nil {
		if *fields.AvgCost <= 0 {
			return nil, fmt.Errorf("avg_cost must be positive")
		}
		h.AvgCost = *fields.AvgCost
	}
	if fields.Sector != nil {
		h.Sector = *fields.Sector
	}
	if fields.PurchaseDate != nil {
		h.PurchaseDate = *fields.PurchaseDate
	}
	h.UpdatedAt = time.Now()

	if err := s.store.Update(id, h); err != nil {
		return nil, fmt.Errorf("failed to update holding %s: %w", id, err)
	}

	s.logger.Debug().Str("holding_id", id).Str("ticker", h.Ticker).Msg("holding updated")
	return h, nil
}

// Delete removes a holding by id.
func (s *HoldingStore) Delete(_ context.Context, id string) error {
	if err := s.store.Delete(id, models.Holding{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("holding not found: %s", id)
		}
		return fmt.Errorf("failed to delete holding %s: %w", id, err)
	}
	s.logger.Debug().Str("holding_id", id).Msg("holding deleted")
	return nil
}

func validateNewHolding(fields models.HoldingFields) error {
	if fields.Ticker == nil || strings.TrimSpace(*fields.Ticker) == "" {
		return fmt.Errorf("ticker is required")
	}
	if fields.Shares == nil || *fields.Shares < 0 {
		return fmt.Errorf("shares must be a non-negative number")
	}
	if fields.AvgCost == nil || *fields.AvgCost <= 0 {
		return fmt.Errorf("avg_cost must be positive")
	}
	return nil
}
