package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/handlers"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// Orchestrator is the slice of the refresh orchestrator the tools need.
type Orchestrator interface {
	Open(ctx context.Context, portfolioID string) (*models.PortfolioValuation, error)
	Refresh(ctx context.Context, portfolioID string) (*models.PortfolioValuation, error)
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable   *mcpserver.StreamableHTTPServer
	portfolios   interfaces.PortfolioStore
	holdings     interfaces.HoldingStore
	reports      interfaces.ReportStore
	orchestrator Orchestrator
	jwtSecret    []byte
	logger       *common.Logger
}

// NewHandler creates the MCP handler and registers the local tool set.
func NewHandler(portfolios interfaces.PortfolioStore, holdings interfaces.HoldingStore, reportStore interfaces.ReportStore, orchestrator Orchestrator, jwtSecret []byte, logger *common.Logger) *Handler {
	h := &Handler{
		portfolios:   portfolios,
		holdings:     holdings,
		reports:      reportStore,
		orchestrator: orchestrator,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"folio",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	toolHandlers := map[string]mcpserver.ToolHandlerFunc{
		"get_version":     h.handleGetVersion,
		"list_portfolios": h.handleListPortfolios,
		"get_portfolio":   h.handleGetPortfolio,
		"get_valuation":   h.handleGetValuation,
		"refresh_quotes":  h.handleRefreshQuotes,
		"generate_report": h.handleGenerateReport,
	}
	var count int
	for _, tool := range toolDefinitions() {
		handler, ok := toolHandlers[tool.Name]
		if !ok {
			continue
		}
		mcpSrv.AddTool(tool, handler)
		count++
	}

	h.streamable = mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().Int("tools", count).Msg("MCP handler initialized")
	return h
}

// ServeHTTP extracts user identity from the session cookie or Bearer token
// and delegates to the mcp-go StreamableHTTPServer. Requests without a valid
// session are rejected with a 401.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = h.withUserContext(r)

	if _, ok := GetUserContext(r.Context()); !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "Authentication required to access MCP endpoint",
		})
		return
	}

	h.streamable.ServeHTTP(w, r)
}

// withUserContext extracts user identity from a Bearer token or the session
// cookie, validates the JWT, and attaches UserContext to the request context.
// If anything fails, the original request is returned unchanged.
func (h *Handler) withUserContext(r *http.Request) *http.Request {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := handlers.ValidateJWT(token, h.jwtSecret)
		if err == nil && claims.Sub != "" {
			ctx := WithUserContext(r.Context(), UserContext{UserID: claims.Sub})
			return r.WithContext(ctx)
		}
	}

	claims := handlers.SessionClaims(r, h.jwtSecret)
	if claims != nil && claims.Sub != "" {
		ctx := WithUserContext(r.Context(), UserContext{UserID: claims.Sub})
		return r.WithContext(ctx)
	}

	return r
}
