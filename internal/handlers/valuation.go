package handlers

import (
	"context"
	"net/http"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
	"github.com/folioworks/folio/internal/refresh"
)

// ValuationProvider opens and refreshes portfolio views.
type ValuationProvider interface {
	Open(ctx context.Context, portfolioID string) (*models.PortfolioValuation, error)
	Refresh(ctx context.Context, portfolioID string) (*models.PortfolioValuation, error)
	Valuation(portfolioID string) (*models.PortfolioValuation, refresh.State)
}

// ValuationHandler serves computed portfolio valuations.
type ValuationHandler struct {
	portfolios   interfaces.PortfolioStore
	orchestrator ValuationProvider
	jwtSecret    []byte
	logger       *common.Logger
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(portfolios interfaces.PortfolioStore, orchestrator ValuationProvider, jwtSecret []byte, logger *common.Logger) *ValuationHandler {
	return &ValuationHandler{
		portfolios:   portfolios,
		orchestrator: orchestrator,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

// HandleValuation handles GET /api/portfolios/{id}/valuation. Opening the
// view starts its periodic refresh cycle.
func (h *ValuationHandler) HandleValuation(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}
	if !h.owns(w, r, claims, portfolioID) {
		return
	}

	valuation, err := h.orchestrator.Open(r.Context(), portfolioID)
	if err != nil {
		h.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("valuation failed")
		WriteError(w, http.StatusInternalServerError, "failed to compute valuation")
		return
	}
	h.write(w, portfolioID, valuation)
}

// HandleRefresh handles POST /api/portfolios/{id}/refresh, forcing a quote
// fetch that bypasses the batch-interval guard.
func (h *ValuationHandler) HandleRefresh(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}
	if !h.owns(w, r, claims, portfolioID) {
		return
	}

	valuation, err := h.orchestrator.Refresh(r.Context(), portfolioID)
	if err != nil {
		h.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("manual refresh failed")
		WriteError(w, http.StatusInternalServerError, "failed to refresh portfolio")
		return
	}
	h.write(w, portfolioID, valuation)
}

func (h *ValuationHandler) write(w http.ResponseWriter, portfolioID string, valuation *models.PortfolioValuation) {
	_, state := h.orchestrator.Valuation(portfolioID)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"state":     state,
		"valuation": valuation,
	})
}

func (h *ValuationHandler) owns(w http.ResponseWriter, r *http.Request, claims *JWTClaims, portfolioID string) bool {
	p, err := h.portfolios.Get(r.Context(), portfolioID)
	if err != nil || p.UserID != claims.Sub {
		WriteError(w, http.StatusNotFound, "portfolio not found")
		return false
	}
	return true
}
