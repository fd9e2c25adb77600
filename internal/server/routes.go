package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Auth
	mux.HandleFunc("/api/auth/login", s.app.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", s.app.AuthHandler.HandleLogout)
	mux.HandleFunc("/api/auth/me", s.app.AuthHandler.HandleMe)

	// Portfolios and their nested resources
	mux.HandleFunc("/api/portfolios", s.app.PortfolioHandler.HandleCollection)
	mux.HandleFunc("/api/portfolios/", s.routePortfolioSubtree)

	// Holdings addressed by id
	mux.HandleFunc("/api/holdings/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/holdings/"), "/")
		if id == "" || strings.Contains(id, "/") {
			s.handleNotFound(w, r)
			return
		}
		s.app.HoldingHandler.HandleItem(w, r, id)
	})

	// Quotes
	mux.HandleFunc("/api/quotes/cache", s.app.QuoteHandler.HandleCache)
	mux.HandleFunc("/api/quotes/", func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/quotes/"), "/")
		if ticker == "" || strings.Contains(ticker, "/") {
			s.handleNotFound(w, r)
			return
		}
		s.app.QuoteHandler.HandleQuote(w, r, ticker)
	})

	// Reports
	mux.HandleFunc("/api/reports", s.app.ReportHandler.HandleCollection)
	mux.HandleFunc("/api/reports/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/reports/"), "/")
		if id == "" || strings.Contains(id, "/") {
			s.handleNotFound(w, r)
			return
		}
		s.app.ReportHandler.HandleItem(w, r, id)
	})

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// routePortfolioSubtree dispatches /api/portfolios/{id}[/...] requests.
func (s *Server) routePortfolioSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/portfolios/"), "/")
	if rest == "" {
		s.app.PortfolioHandler.HandleCollection(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		s.app.PortfolioHandler.HandleItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "holdings":
		s.app.HoldingHandler.HandleCollection(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "valuation":
		s.app.ValuationHandler.HandleValuation(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "refresh":
		s.app.ValuationHandler.HandleRefresh(w, r, parts[0])
	default:
		s.handleNotFound(w, r)
	}
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
