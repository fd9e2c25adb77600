// Package marketdata implements the quote pipeline: a normalizing client
// for the upstream quote provider, a TTL cache persisted through the KV
// store, and a rate-limited bulk fetcher.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/models"
)

// Client fetches quotes from the upstream provider (Yahoo Finance v7 quote
// endpoint) and normalizes responses into models.Quote. It never returns an
// error: every upstream failure becomes an error-flagged fallback quote so
// callers can degrade instead of failing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// NewClient creates a quote client from provider configuration.
func NewClient(cfg config.QuotesConfig, logger *common.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		logger: logger,
	}
}

// quoteResponse is the provider's quote envelope. Fields arrive as a loose
// map because the provider omits keys rather than sending nulls.
type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// GetQuote fetches a normalized quote for a single ticker. The ticker is
// uppercased before the outbound call; an empty ticker is rejected without
// touching the network.
func (c *Client) GetQuote(ctx context.Context, ticker string) models.Quote {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return fallbackQuote("", "ticker symbol is required")
	}

	reqURL := fmt.Sprintf("%s?symbols=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fallbackQuote(symbol, fmt.Sprintf("failed to build request: %v", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Str("ticker", symbol).Str("error", err.Error()).Msg("quote fetch failed")
		return fallbackQuote(symbol, fmt.Sprintf("failed to reach quote provider: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fallbackQuote(symbol, fmt.Sprintf("failed to read response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("ticker", symbol).Int("status", resp.StatusCode).Msg("quote provider returned non-OK status")
		return fallbackQuote(symbol, fmt.Sprintf("quote provider returned %d", resp.StatusCode))
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fallbackQuote(symbol, fmt.Sprintf("malformed provider response: %v", err))
	}

	results := parsed.QuoteResponse.Result
	if len(results) == 0 {
		return fallbackQuote(symbol, fmt.Sprintf("no data available for ticker: %s", symbol))
	}
	info := results[0]

	return models.Quote{
		Ticker:       symbol,
		CurrentPrice: getFloat64(info, "regularMarketPrice"),
		Change:       getFloat64(info, "regularMarketChange"),
		ChangePct:    getFloat64(info, "regularMarketChangePercent"),
		Volume:       getInt64(info, "regularMarketVolume"),
		MarketCap:    getFloat64(info, "marketCap"),
		PE:           getFloat64(info, "trailingPE"),
		High52Week:   getFloat64(info, "fiftyTwoWeekHigh"),
		Low52Week:    getFloat64(info, "fiftyTwoWeekLow"),
		Timestamp:    time.Now(),
	}
}

// fallbackQuote builds the zeroed placeholder returned for any failed fetch.
func fallbackQuote(ticker, cause string) models.Quote {
	return models.Quote{
		Ticker:    strings.ToUpper(strings.TrimSpace(ticker)),
		Timestamp: time.Now(),
		Error:     cause,
	}
}

func getFloat64(info map[string]interface{}, key string) float64 {
	if v, ok := info[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

func getInt64(info map[string]interface{}, key string) int64 {
	if v, ok := info[key]; ok {
		if f, ok := v.(float64); ok {
			return int64(f)
		}
	}
	return 0
}
