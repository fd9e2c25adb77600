package handlers

import (
	"net/http"
	"strings"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/marketdata"
)

// QuoteHandler serves single quotes and cache introspection.
type QuoteHandler struct {
	provider  interfaces.QuoteProvider
	cache     *marketdata.QuoteCache
	jwtSecret []byte
	logger    *common.Logger
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(provider interfaces.QuoteProvider, cache *marketdata.QuoteCache, jwtSecret []byte, logger *common.Logger) *QuoteHandler {
	return &QuoteHandler{provider: provider, cache: cache, jwtSecret: jwtSecret, logger: logger}
}

// HandleQuote handles GET /api/quotes/{ticker}. Serves the cache when fresh,
// otherwise fetches live and caches the result.
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := RequireUser(w, r, h.jwtSecret); !ok {
		return
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	if quote, ok := h.cache.Get(ticker); ok {
		WriteJSON(w, http.StatusOK, quote)
		return
	}

	quote := h.provider.GetQuote(r.Context(), ticker)
	h.cache.Put(ticker, quote)
	WriteJSON(w, http.StatusOK, quote)
}

// HandleCache handles GET and DELETE /api/quotes/cache.
// GET lists cached tickers with their age; DELETE empties the cache.
func (h *QuoteHandler) HandleCache(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r, h.jwtSecret); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": h.cache.Status()})
	case http.MethodDelete:
		h.cache.Clear()
		h.logger.Info().Msg("quote cache cleared")
		WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
