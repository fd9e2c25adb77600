package marketdata

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// kvQuotePrefix namespaces persisted quote entries in the shared KV store.
const kvQuotePrefix = "quote:"

// cacheEntry wraps a quote with its insertion time.
type cacheEntry struct {
	Quote      models.Quote `json:"quote"`
	InsertedAt time.Time    `json:"inserted_at"`
}

// QuoteCache is a per-ticker TTL cache of quotes, shared by the single-quote
// path, the bulk fetcher, and manual refresh. Entries are persisted to the
// KV store so cached prices survive restarts; unreadable persisted entries
// are dropped rather than treated as fatal. Mutations are last-writer-wins
// per ticker. Thread-safe with sync.RWMutex.
type QuoteCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	kv      interfaces.KeyValueStorage // nil disables persistence
	logger  *common.Logger
}

// CacheStatus describes one cached entry for introspection.
type CacheStatus struct {
	Ticker string  `json:"ticker"`
	AgeSec int64   `json:"age_seconds"`
	Price  float64 `json:"price"`
}

// NewQuoteCache creates a quote cache with the given TTL, hydrating any
// entries previously persisted to kv. Pass a nil kv for a purely in-memory
// cache.
func NewQuoteCache(ttl time.Duration, kv interfaces.KeyValueStorage, logger *common.Logger) *QuoteCache {
	c := &QuoteCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		kv:      kv,
		logger:  logger,
	}
	c.load()
	return c
}

// load hydrates the in-memory map from persisted entries. Corrupt or
// unreadable storage yields an empty cache, never an error.
func (c *QuoteCache) load() {
	if c.kv == nil {
		return
	}
	all, err := c.kv.GetAll(context.Background())
	if err != nil {
		c.logger.Warn().Str("error", err.Error()).Msg("failed to load quote cache, starting empty")
		return
	}
	loaded := 0
	for key, value := range all {
		if !strings.HasPrefix(key, kvQuotePrefix) {
			continue
		}
		var entry cacheEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			c.logger.Debug().Str("key", key).Msg("dropping corrupt quote cache entry")
			continue
		}
		c.entries[strings.TrimPrefix(key, kvQuotePrefix)] = entry
		loaded++
	}
	if loaded > 0 {
		c.logger.Info().Int("entries", loaded).Msg("quote cache loaded from storage")
	}
}

// Get returns the cached quote for a ticker only while it is fresh
// (younger than the TTL). Stale or missing entries report absence so the
// caller refetches.
func (c *QuoteCache) Get(ticker string) (models.Quote, bool) {
	c.mu.RLock()
	entry, ok := c.entries[strings.ToUpper(ticker)]
	c.mu.RUnlock()

	if !ok {
		return models.Quote{}, false
	}
	if time.Since(entry.InsertedAt) >= c.ttl {
		return models.Quote{}, false
	}
	return entry.Quote, true
}

// GetStale returns the cached quote regardless of age. Used as the
// last-resort fallback when a live fetch fails.
func (c *QuoteCache) GetStale(ticker string) (models.Quote, bool) {
	c.mu.RLock()
	entry, ok := c.entries[strings.ToUpper(ticker)]
	c.mu.RUnlock()

	if !ok {
		return models.Quote{}, false
	}
	return entry.Quote, true
}

// Put stores a quote stamped with the current time. Failed or zero-priced
// quotes are never cached: a placeholder must not mask a later good fetch.
func (c *QuoteCache) Put(ticker string, quote models.Quote) {
	if !quote.OK() {
		return
	}
	symbol := strings.ToUpper(ticker)
	entry := cacheEntry{Quote: quote, InsertedAt: time.Now()}

	c.mu.Lock()
	c.entries[symbol] = entry
	c.mu.Unlock()

	c.persist(symbol, entry)
}

// persist writes one entry through to the KV store. Persistence failures
// only degrade durability, so they are logged and swallowed.
func (c *QuoteCache) persist(symbol string, entry cacheEntry) {
	if c.kv == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.kv.Set(context.Background(), kvQuotePrefix+symbol, string(data)); err != nil {
		c.logger.Warn().Str("ticker", symbol).Str("error", err.Error()).Msg("failed to persist quote cache entry")
	}
}

// Clear empties the cache, including persisted entries.
func (c *QuoteCache) Clear() {
	c.mu.Lock()
	tickers := make([]string, 0, len(c.entries))
	for t := range c.entries {
		tickers = append(tickers, t)
	}
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()

	if c.kv == nil {
		return
	}
	for _, t := range tickers {
		if err := c.kv.Delete(context.Background(), kvQuotePrefix+t); err != nil {
			c.logger.Warn().Str("ticker", t).Str("error", err.Error()).Msg("failed to delete persisted quote")
		}
	}
}

// Status returns per-ticker age and price for cache introspection.
func (c *QuoteCache) Status() []CacheStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	status := make([]CacheStatus, 0, len(c.entries))
	for ticker, entry := range c.entries {
		status = append(status, CacheStatus{
			Ticker: ticker,
			AgeSec: int64(now.Sub(entry.InsertedAt).Seconds()),
			Price:  entry.Quote.CurrentPrice,
		})
	}
	return status
}
