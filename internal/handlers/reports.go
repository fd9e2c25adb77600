package handlers

import (
	"net/http"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
	"github.com/folioworks/folio/internal/reports"
)

// ReportHandler generates and serves saved narrative reports.
type ReportHandler struct {
	portfolios   interfaces.PortfolioStore
	reports      interfaces.ReportStore
	orchestrator ValuationProvider
	jwtSecret    []byte
	logger       *common.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(portfolios interfaces.PortfolioStore, reportStore interfaces.ReportStore, orchestrator ValuationProvider, jwtSecret []byte, logger *common.Logger) *ReportHandler {
	return &ReportHandler{
		portfolios:   portfolios,
		reports:      reportStore,
		orchestrator: orchestrator,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

// HandleCollection handles GET /api/reports (saved report history) and
// POST /api/reports (generate and persist a new report).
func (h *ReportHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		docs, err := h.reports.List(r.Context(), claims.Sub)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to list reports")
			WriteError(w, http.StatusInternalServerError, "failed to list reports")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"reports": docs})
	case http.MethodPost:
		h.generate(w, r, claims)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ReportHandler) generate(w http.ResponseWriter, r *http.Request, claims *JWTClaims) {
	var req struct {
		PortfolioID string `json:"portfolio_id"`
		Type        string `json:"type"`
	}
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	reportType := models.ReportType(req.Type)
	if !reportType.Valid() {
		WriteError(w, http.StatusBadRequest, "report type must be morning, evening or weekly")
		return
	}

	p, err := h.portfolios.Get(r.Context(), req.PortfolioID)
	if err != nil || p.UserID != claims.Sub {
		WriteError(w, http.StatusNotFound, "portfolio not found")
		return
	}

	valuation, err := h.orchestrator.Open(r.Context(), req.PortfolioID)
	if err != nil {
		h.logger.Error().Err(err).Str("portfolio", req.PortfolioID).Msg("valuation for report failed")
		WriteError(w, http.StatusInternalServerError, "failed to value portfolio")
		return
	}
	if valuation == nil {
		WriteError(w, http.StatusBadRequest, "portfolio has no holdings to report on")
		return
	}

	doc, err := reports.Generate(reportType, claims.Sub, valuation)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reports.Save(r.Context(), doc); err != nil {
		h.logger.Error().Err(err).Msg("failed to save report")
		WriteError(w, http.StatusInternalServerError, "failed to save report")
		return
	}

	h.logger.Info().Str("type", string(reportType)).Str("portfolio", req.PortfolioID).Msg("report generated")
	WriteJSON(w, http.StatusCreated, doc)
}

// HandleItem handles GET and DELETE /api/reports/{id}.
func (h *ReportHandler) HandleItem(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}

	doc, err := h.reports.Get(r.Context(), id)
	if err != nil || doc.UserID != claims.Sub {
		WriteError(w, http.StatusNotFound, "report not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := h.reports.Delete(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to delete report")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
