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

// ReportStore persists generated reports in BadgerDB.
type ReportStore struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewReportStore creates a report repository.
func NewReportStore(store *badgerhold.Store, logger *common.Logger) *ReportStore {
	return &ReportStore{store: store, logger: logger}
}

// List returns a user's saved reports, newest first.
func (s *ReportStore) List(_ context.Context, userID string) ([]models.ReportDocument, error) {
	var reports []models.ReportDocument
	q := badgerhold.Where("UserID").Eq(userID).Index("UserID").SortBy("GeneratedAt").Reverse()
	if err := s.store.Find(&reports, q); err != nil {
		return nil, fmt.Errorf("failed to list reports for user %s: %w", userID, err)
	}
	return reports, nil
}

// Get returns a stored report by id.
func (s *ReportStore) Get(_ context.Context, id string) (*models.ReportDocument, error) {
	var r models.ReportDocument
	if err := s.store.Get(id, &r); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("report not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return &r, nil
}

// Save stores a report, assigning an id and timestamp when missing.
func (s *ReportStore) Save(_ context.Context, r *models.ReportDocument) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}
	if err := s.store.Upsert(r.ID, r); err != nil {
		return fmt.Errorf("failed to save report %s: %w", r.ID, err)
	}
	s.logger.Debug().Str("report_id", r.ID).Str("type", string(r.Type)).Msg("report saved")
	return nil
}

// Delete removes a stored report.
func (s *ReportStore) Delete(_ context.Context, id string) error {
	if err := s.store.Delete(id, models.ReportDocument{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("report not found: %s", id)
		}
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	return nil
}
