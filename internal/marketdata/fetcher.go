package marketdata

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// ErrFetchInFlight is returned when a bulk fetch is requested while another
// is already running. The caller should rely on the in-flight fetch's result.
var ErrFetchInFlight = errors.New("bulk quote fetch already in flight")

// ErrBatchTooSoon is returned when a bulk fetch is requested before the
// minimum batch interval has elapsed since the previous one.
var ErrBatchTooSoon = errors.New("bulk quote fetch requested too soon")

// BulkFetcher resolves a set of tickers into quotes, consulting the cache
// first and pacing upstream calls with a minimum inter-request delay.
// Tickers are resolved sequentially in input order so the pacing holds.
type BulkFetcher struct {
	provider      interfaces.QuoteProvider
	cache         *QuoteCache
	requestDelay  time.Duration
	batchInterval time.Duration
	logger        *common.Logger

	mu          sync.Mutex
	lastRequest time.Time
	lastBatch   time.Time
	inFlight    bool

	// sleep is replaceable in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBulkFetcher creates a bulk fetcher over the given provider and cache.
func NewBulkFetcher(provider interfaces.QuoteProvider, cache *QuoteCache, requestDelay time.Duration, logger *common.Logger) *BulkFetcher {
	return &BulkFetcher{
		provider:      provider,
		cache:         cache,
		requestDelay:  requestDelay,
		batchInterval: common.BulkRefreshInterval,
		logger:        logger,
		sleep:         sleepCtx,
	}
}

// FetchAll resolves quotes for all tickers, minimizing upstream calls.
// Returns ErrFetchInFlight when a bulk fetch is already running, and
// ErrBatchTooSoon when called within the minimum batch interval; both are
// benign and mean "use the previous result".
func (f *BulkFetcher) FetchAll(ctx context.Context, tickers []string) (map[string]models.Quote, error) {
	return f.fetchAll(ctx, tickers, false)
}

// FetchAllForce is FetchAll without the batch-interval guard, for explicit
// user-requested refreshes. The in-flight guard still applies.
func (f *BulkFetcher) FetchAllForce(ctx context.Context, tickers []string) (map[string]models.Quote, error) {
	return f.fetchAll(ctx, tickers, true)
}

func (f *BulkFetcher) fetchAll(ctx context.Context, tickers []string, force bool) (map[string]models.Quote, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	if !force && !f.lastBatch.IsZero() && time.Since(f.lastBatch) < f.batchInterval {
		f.mu.Unlock()
		return nil, ErrBatchTooSoon
	}
	f.inFlight = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.lastBatch = time.Now()
		f.mu.Unlock()
	}()

	results := make(map[string]models.Quote, len(tickers))
	for _, raw := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			continue
		}
		quote, err := f.fetchOne(ctx, ticker)
		if err != nil {
			// Only context cancellation aborts the batch; provider
			// failures already degraded into fallback quotes.
			return results, err
		}
		results[ticker] = quote
	}
	return results, nil
}

// fetchOne resolves a single ticker: fresh cache hit, then a rate-limited
// live fetch, then the stale cache, then an error-flagged placeholder.
func (f *BulkFetcher) fetchOne(ctx context.Context, ticker string) (models.Quote, error) {
	if quote, ok := f.cache.Get(ticker); ok {
		return quote, nil
	}

	if err := f.waitForSlot(ctx); err != nil {
		return models.Quote{}, err
	}

	quote := f.provider.GetQuote(ctx, ticker)
	if quote.OK() {
		f.cache.Put(ticker, quote)
		return quote, nil
	}

	f.logger.Warn().Str("ticker", ticker).Str("error", quote.Error).Msg("live quote fetch failed, trying stale cache")

	if stale, ok := f.cache.GetStale(ticker); ok {
		stale.Stale = true
		return stale, nil
	}

	// Nothing cached either: surface the provider's fallback placeholder.
	return quote, nil
}

// waitForSlot blocks until the minimum inter-request delay has elapsed
// since the previous upstream call.
func (f *BulkFetcher) waitForSlot(ctx context.Context) error {
	f.mu.Lock()
	wait := f.requestDelay - time.Since(f.lastRequest)
	f.mu.Unlock()

	if wait > 0 {
		if err := f.sleep(ctx, wait); err != nil {
			return err
		}
	}

	f.mu.Lock()
	f.lastRequest = time.Now()
	f.mu.Unlock()
	return nil
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
