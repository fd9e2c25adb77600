package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// toolDefinitions returns the full local tool set.
func toolDefinitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("get_version",
			mcp.WithDescription("Get the Folio server version and build information. Use this to verify connectivity."),
		),
		mcp.NewTool("list_portfolios",
			mcp.WithDescription("List all portfolios belonging to the authenticated user."),
		),
		mcp.NewTool("get_portfolio",
			mcp.WithDescription("Get a portfolio and its holdings."),
			mcp.WithString("portfolio_id", mcp.Required(), mcp.Description("ID of the portfolio to fetch")),
		),
		mcp.NewTool("get_valuation",
			mcp.WithDescription("Compute the current market valuation of a portfolio: per-holding market values, P&L, day change and weights, plus aggregate totals. Uses cached quotes when fresh."),
			mcp.WithString("portfolio_id", mcp.Required(), mcp.Description("ID of the portfolio to value")),
		),
		mcp.NewTool("refresh_quotes",
			mcp.WithDescription("Force a live quote refresh for a portfolio, bypassing the batch-interval guard, and return the recomputed valuation."),
			mcp.WithString("portfolio_id", mcp.Required(), mcp.Description("ID of the portfolio to refresh")),
		),
		mcp.NewTool("generate_report",
			mcp.WithDescription("Generate and save a narrative report (morning, evening or weekly) for a portfolio."),
			mcp.WithString("portfolio_id", mcp.Required(), mcp.Description("ID of the portfolio to report on")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Report type: morning, evening or weekly")),
		),
	}
}
