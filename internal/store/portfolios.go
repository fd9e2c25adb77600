// Package store implements badgerhold-backed repositories for Folio's
// durable entities. All writes are last-write-wins; a failed write leaves
// the stored state unchanged.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

// PortfolioStore persists portfolios in BadgerDB.
type PortfolioStore struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewPortfolioStore creates a portfolio repository.
func NewPortfolioStore(store *badgerhold.Store, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{store: store, logger: logger}
}

// List returns all portfolios owned by a user, oldest first.
func (s *PortfolioStore) List(_ context.Context, userID string) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	q := badgerhold.Where("UserID").Eq(userID).Index("UserID").SortBy("CreatedAt")
	if err := s.store.Find(&portfolios, q); err != nil {
		return nil, fmt.Errorf("failed to list portfolios for user %s: %w", userID, err)
	}
	return portfolios, nil
}

// Get returns a portfolio by id.
func (s *PortfolioStore) Get(_ context.Context, id string) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := s.store.Get(id, &p); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("portfolio not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get portfolio %s: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new portfolio, assigning id and timestamps.
func (s *PortfolioStore) Create(_ context.Context, p *models.Portfolio) error {
	if p.Name == "" {
		return fmt.Errorf("portfolio name is required")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.Insert(p.ID, p); err != nil {
		return fmt.Errorf("failed to create portfolio %s: %w", p.Name, err)
	}

	s.logger.Debug().Str("portfolio_id", p.ID).Str("name", p.Name).Msg("portfolio created")
	return nil
}

// Delete removes a portfolio and all of its holdings.
func (s *PortfolioStore) Delete(_ context.Context, id string) error {
	if err := s.store.Delete(id, models.Portfolio{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("portfolio not found: %s", id)
		}
		return fmt.Errorf("failed to delete portfolio %s: %w", id, err)
	}

	// Orphaned holdings are removed with their portfolio.
	q := badgerhold.Where("PortfolioID").Eq(id).Index("PortfolioID")
	if err := s.store.DeleteMatching(models.Holding{}, q); err != nil {
		return fmt.Errorf("failed to delete holdings for portfolio %s: %w", id, err)
	}

	s.logger.Debug().Str("portfolio_id", id).Msg("portfolio deleted")
	return nil
}
