package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/models"
	"github.com/folioworks/folio/internal/reports"
)

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v into a text content result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal result"), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}, nil
}

// userPortfolio loads a portfolio and verifies it belongs to the calling user.
func (h *Handler) userPortfolio(ctx context.Context, portfolioID string) (*models.Portfolio, error) {
	uc, ok := GetUserContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no user context")
	}
	p, err := h.portfolios.Get(ctx, portfolioID)
	if err != nil || p.UserID != uc.UserID {
		return nil, fmt.Errorf("portfolio not found: %s", portfolioID)
	}
	return p, nil
}

func (h *Handler) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]string{
		"version":    config.GetVersion(),
		"build":      config.GetBuild(),
		"git_commit": config.GetGitCommit(),
	})
}

func (h *Handler) handleListPortfolios(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uc, ok := GetUserContext(ctx)
	if !ok {
		return errorResult("no user context"), nil
	}
	portfolios, err := h.portfolios.List(ctx, uc.UserID)
	if err != nil {
		return errorResult("failed to list portfolios: " + err.Error()), nil
	}
	return jsonResult(map[string]interface{}{"portfolios": portfolios})
}

func (h *Handler) handleGetPortfolio(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	portfolioID, err := request.RequireString("portfolio_id")
	if err != nil {
		return errorResult("portfolio_id is required"), nil
	}
	p, err := h.userPortfolio(ctx, portfolioID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	holdings, err := h.holdings.List(ctx, portfolioID)
	if err != nil {
		return errorResult("failed to list holdings: " + err.Error()), nil
	}
	return jsonResult(map[string]interface{}{
		"portfolio": p,
		"holdings":  holdings,
	})
}

func (h *Handler) handleGetValuation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	portfolioID, err := request.RequireString("portfolio_id")
	if err != nil {
		return errorResult("portfolio_id is required"), nil
	}
	if _, err := h.userPortfolio(ctx, portfolioID); err != nil {
		return errorResult(err.Error()), nil
	}
	valuation, err := h.orchestrator.Open(ctx, portfolioID)
	if err != nil {
		return errorResult("failed to compute valuation: " + err.Error()), nil
	}
	if valuation == nil {
		return jsonResult(map[string]string{"status": "portfolio has no holdings"})
	}
	return jsonResult(valuation)
}

func (h *Handler) handleRefreshQuotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	portfolioID, err := request.RequireString("portfolio_id")
	if err != nil {
		return errorResult("portfolio_id is required"), nil
	}
	if _, err := h.userPortfolio(ctx, portfolioID); err != nil {
		return errorResult(err.Error()), nil
	}
	valuation, err := h.orchestrator.Refresh(ctx, portfolioID)
	if err != nil {
		return errorResult("failed to refresh quotes: " + err.Error()), nil
	}
	if valuation == nil {
		return jsonResult(map[string]string{"status": "portfolio has no holdings"})
	}
	return jsonResult(valuation)
}

func (h *Handler) handleGenerateReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	portfolioID, err := request.RequireString("portfolio_id")
	if err != nil {
		return errorResult("portfolio_id is required"), nil
	}
	reportType := models.ReportType(request.GetString("type", ""))
	if !reportType.Valid() {
		return errorResult("type must be morning, evening or weekly"), nil
	}
	if _, err := h.userPortfolio(ctx, portfolioID); err != nil {
		return errorResult(err.Error()), nil
	}

	uc, _ := GetUserContext(ctx)
	valuation, err := h.orchestrator.Open(ctx, portfolioID)
	if err != nil {
		return errorResult("failed to value portfolio: " + err.Error()), nil
	}
	doc, err := reports.Generate(reportType, uc.UserID, valuation)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if err := h.reports.Save(ctx, doc); err != nil {
		return errorResult("failed to save report: " + err.Error()), nil
	}
	return jsonResult(doc)
}
