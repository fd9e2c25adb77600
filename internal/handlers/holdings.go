package handlers

import (
	"context"
	"net/http"
	"strings"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// HoldingsChangeNotifier is told when a portfolio's holdings set changes so
// open views can schedule a refresh.
type HoldingsChangeNotifier interface {
	NotifyHoldingsChanged(ctx context.Context, portfolioID string)
}

// HoldingHandler serves holding collection and item requests.
type HoldingHandler struct {
	portfolios interfaces.PortfolioStore
	holdings   interfaces.HoldingStore
	notifier   HoldingsChangeNotifier
	jwtSecret  []byte
	logger     *common.Logger
}

// NewHoldingHandler creates a new holding handler.
func NewHoldingHandler(portfolios interfaces.PortfolioStore, holdings interfaces.HoldingStore, notifier HoldingsChangeNotifier, jwtSecret []byte, logger *common.Logger) *HoldingHandler {
	return &HoldingHandler{
		portfolios: portfolios,
		holdings:   holdings,
		notifier:   notifier,
		jwtSecret:  jwtSecret,
		logger:     logger,
	}
}

// HandleCollection handles GET and POST /api/portfolios/{id}/holdings.
func (h *HoldingHandler) HandleCollection(w http.ResponseWriter, r *http.Request, portfolioID string) {
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}
	if !h.ownsPortfolio(w, r, claims, portfolioID) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		holdings, err := h.holdings.List(r.Context(), portfolioID)
		if err != nil {
			h.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("failed to list holdings")
			WriteError(w, http.StatusInternalServerError, "failed to list holdings")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"holdings": holdings})
	case http.MethodPost:
		var fields models.HoldingFields
		if err := ReadJSON(r, &fields); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		holding, err := h.holdings.Create(r.Context(), portfolioID, fields)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.notifier.NotifyHoldingsChanged(r.Context(), portfolioID)
		WriteJSON(w, http.StatusCreated, holding)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleItem handles PUT and DELETE /api/holdings/{id}.
func (h *HoldingHandler) HandleItem(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}

	holding, err := h.holdings.Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "holding not found")
		return
	}
	if !h.ownsPortfolio(w, r, claims, holding.PortfolioID) {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var fields models.HoldingFields
		if err := ReadJSON(r, &fields); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := h.holdings.Update(r.Context(), id, fields)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.notifier.NotifyHoldingsChanged(r.Context(), holding.PortfolioID)
		WriteJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.holdings.Delete(r.Context(), id); err != nil {
			WriteError(w, http.StatusNotFound, "holding not found")
			return
		}
		h.notifier.NotifyHoldingsChanged(r.Context(), holding.PortfolioID)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ownsPortfolio verifies the portfolio exists and belongs to the session
// user. Access failures are reported as missing resources.
func (h *HoldingHandler) ownsPortfolio(w http.ResponseWriter, r *http.Request, claims *JWTClaims, portfolioID string) bool {
	if strings.TrimSpace(portfolioID) == "" {
		WriteError(w, http.StatusNotFound, "portfolio not found")
		return false
	}
	p, err := h.portfolios.Get(r.Context(), portfolioID)
	if err != nil || p.UserID != claims.Sub {
		WriteError(w, http.StatusNotFound, "portfolio not found")
		return false
	}
	return true
}
