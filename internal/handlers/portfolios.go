package handlers

import (
	"net/http"
	"strings"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// PortfolioHandler serves portfolio collection and item requests.
type PortfolioHandler struct {
	portfolios interfaces.PortfolioStore
	jwtSecret  []byte
	logger     *common.Logger
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(portfolios interfaces.PortfolioStore, jwtSecret []byte, logger *common.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios, jwtSecret: jwtSecret, logger: logger}
}

// HandleCollection handles GET and POST /api/portfolios.
func (h *PortfolioHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, claims)
	case http.MethodPost:
		h.create(w, r, claims)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PortfolioHandler) list(w http.ResponseWriter, r *http.Request, claims *JWTClaims) {
	portfolios, err := h.portfolios.List(r.Context(), claims.Sub)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list portfolios")
		WriteError(w, http.StatusInternalServerError, "failed to list portfolios")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"portfolios": portfolios})
}

func (h *PortfolioHandler) create(w http.ResponseWriter, r *http.Request, claims *JWTClaims) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		WriteError(w, http.StatusBadRequest, "portfolio name is required")
		return
	}

	p := &models.Portfolio{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		UserID:      claims.Sub,
	}
	if err := h.portfolios.Create(r.Context(), p); err != nil {
		h.logger.Error().Err(err).Msg("failed to create portfolio")
		WriteError(w, http.StatusInternalServerError, "failed to create portfolio")
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

// HandleItem handles GET and DELETE /api/portfolios/{id}.
func (h *PortfolioHandler) HandleItem(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}

	p, err := h.portfolios.Get(r.Context(), id)
	if err != nil || p.UserID != claims.Sub {
		WriteError(w, http.StatusNotFound, "portfolio not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := h.portfolios.Delete(r.Context(), id); err != nil {
			h.logger.Error().Err(err).Str("portfolio", id).Msg("failed to delete portfolio")
			WriteError(w, http.StatusInternalServerError, "failed to delete portfolio")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
