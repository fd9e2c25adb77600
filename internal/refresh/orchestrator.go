// Package refresh coordinates quote fetching for open portfolio views.
// Each open view cycles between Idle and Fetching; quote data is refreshed
// when the view opens, when its holdings change, on manual request, and on
// a periodic tick. Failures degrade to the last computed valuation.
package refresh

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/marketdata"
	"github.com/folioworks/folio/internal/models"
	"github.com/folioworks/folio/internal/valuation"
)

// State describes what a portfolio view is currently doing.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
)

// BulkQuoteFetcher is the slice of marketdata.BulkFetcher the orchestrator needs.
type BulkQuoteFetcher interface {
	FetchAll(ctx context.Context, tickers []string) (map[string]models.Quote, error)
	FetchAllForce(ctx context.Context, tickers []string) (map[string]models.Quote, error)
}

// view tracks the refresh lifecycle of one open portfolio.
type view struct {
	portfolioID string
	state       State
	valuation   *models.PortfolioValuation
	signature   string
	periodic    *time.Ticker
	debounce    *time.Timer
	stop        chan struct{}
	closed      bool
}

// Orchestrator owns the set of open portfolio views and their timers.
type Orchestrator struct {
	portfolios interfaces.PortfolioStore
	holdings   interfaces.HoldingStore
	fetcher    BulkQuoteFetcher
	cache      *marketdata.QuoteCache
	logger     *common.Logger

	interval time.Duration
	debounce time.Duration

	mu    sync.Mutex
	views map[string]*view
}

func NewOrchestrator(portfolios interfaces.PortfolioStore, holdings interfaces.HoldingStore, fetcher BulkQuoteFetcher, cache *marketdata.QuoteCache, logger *common.Logger) *Orchestrator {
	return &Orchestrator{
		portfolios: portfolios,
		holdings:   holdings,
		fetcher:    fetcher,
		cache:      cache,
		logger:     logger,
		interval:   common.PeriodicRefresh,
		debounce:   common.RecomputeDebounce,
		views:      make(map[string]*view),
	}
}

// Open registers a portfolio view, performs an initial refresh when the
// portfolio has holdings, and starts the periodic refresh ticker. Opening an
// already-open view is a no-op returning its current valuation.
func (o *Orchestrator) Open(ctx context.Context, portfolioID string) (*models.PortfolioValuation, error) {
	o.mu.Lock()
	if v, ok := o.views[portfolioID]; ok {
		val := v.valuation
		o.mu.Unlock()
		return val, nil
	}
	v := &view{
		portfolioID: portfolioID,
		state:       StateIdle,
		periodic:    time.NewTicker(o.interval),
		stop:        make(chan struct{}),
	}
	o.views[portfolioID] = v
	o.mu.Unlock()

	go o.runPeriodic(v)

	o.logger.Debug().Str("portfolio", portfolioID).Msg("portfolio view opened")
	return o.refresh(ctx, v, false)
}

func (o *Orchestrator) runPeriodic(v *view) {
	for {
		select {
		case <-v.stop:
			return
		case <-v.periodic.C:
			if _, err := o.refresh(context.Background(), v, false); err != nil {
				o.logger.Warn().Str("portfolio", v.portfolioID).Err(err).Msg("periodic refresh failed")
			}
		}
	}
}

// Valuation returns the last committed valuation and the view's state.
// A portfolio that was never opened reports Idle with no valuation.
func (o *Orchestrator) Valuation(portfolioID string) (*models.PortfolioValuation, State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.views[portfolioID]
	if !ok {
		return nil, StateIdle
	}
	return v.valuation, v.state
}

// Refresh forces a fetch for the given view, bypassing the batch-interval
// guard. The view is opened first if needed.
func (o *Orchestrator) Refresh(ctx context.Context, portfolioID string) (*models.PortfolioValuation, error) {
	o.mu.Lock()
	v, ok := o.views[portfolioID]
	o.mu.Unlock()
	if !ok {
		return o.Open(ctx, portfolioID)
	}
	return o.refresh(ctx, v, true)
}

// NotifyHoldingsChanged re-reads the portfolio's holdings and, when the set
// differs from the last committed one, schedules a debounced refresh. Rapid
// successive edits collapse into a single fetch.
func (o *Orchestrator) NotifyHoldingsChanged(ctx context.Context, portfolioID string) {
	o.mu.Lock()
	v, ok := o.views[portfolioID]
	o.mu.Unlock()
	if !ok {
		return
	}

	holdings, err := o.holdings.List(ctx, portfolioID)
	if err != nil {
		o.logger.Warn().Str("portfolio", portfolioID).Err(err).Msg("holdings change check failed")
		return
	}
	sig := holdingsSignature(holdings)

	o.mu.Lock()
	defer o.mu.Unlock()
	if v.closed || sig == v.signature {
		return
	}
	if v.debounce != nil {
		v.debounce.Stop()
	}
	v.debounce = time.AfterFunc(o.debounce, func() {
		if _, err := o.refresh(context.Background(), v, false); err != nil {
			o.logger.Warn().Str("portfolio", v.portfolioID).Err(err).Msg("debounced refresh failed")
		}
	})
}

// refresh drives one Idle→Fetching→Idle cycle. Guard errors from the fetcher
// leave the previous valuation in place; results are only committed while the
// view is still open.
func (o *Orchestrator) refresh(ctx context.Context, v *view, force bool) (*models.PortfolioValuation, error) {
	o.mu.Lock()
	if v.closed {
		val := v.valuation
		o.mu.Unlock()
		return val, nil
	}
	if v.state == StateFetching {
		val := v.valuation
		o.mu.Unlock()
		return val, nil
	}
	v.state = StateFetching
	o.mu.Unlock()

	val, sig, err := o.compute(ctx, v.portfolioID, force)

	o.mu.Lock()
	defer o.mu.Unlock()
	v.state = StateIdle
	if err != nil || v.closed {
		return v.valuation, err
	}
	v.valuation = val
	v.signature = sig
	return v.valuation, nil
}

func (o *Orchestrator) compute(ctx context.Context, portfolioID string, force bool) (*models.PortfolioValuation, string, error) {
	portfolio, err := o.portfolios.Get(ctx, portfolioID)
	if err != nil {
		return nil, "", err
	}
	holdings, err := o.holdings.List(ctx, portfolioID)
	if err != nil {
		return nil, "", err
	}
	sig := holdingsSignature(holdings)
	if len(holdings) == 0 {
		return nil, sig, nil
	}

	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		tickers = append(tickers, h.Ticker)
	}

	fetch := o.fetcher.FetchAll
	if force {
		fetch = o.fetcher.FetchAllForce
	}
	quotes, err := fetch(ctx, tickers)
	if err != nil {
		if errors.Is(err, marketdata.ErrFetchInFlight) || errors.Is(err, marketdata.ErrBatchTooSoon) {
			// A fetch is already running or ran recently. Recompute with
			// whatever the cache already holds, stale included.
			return valuation.Compute(portfolio, holdings, o.cachedQuotes(tickers)), sig, nil
		}
		return nil, "", err
	}

	return valuation.Compute(portfolio, holdings, quotes), sig, nil
}

func (o *Orchestrator) cachedQuotes(tickers []string) map[string]models.Quote {
	quotes := make(map[string]models.Quote, len(tickers))
	if o.cache == nil {
		return quotes
	}
	for _, ticker := range tickers {
		if q, ok := o.cache.GetStale(ticker); ok {
			quotes[ticker] = q
		}
	}
	return quotes
}

// Close tears down one view: its timers stop and any in-flight fetch result
// is discarded instead of committed.
func (o *Orchestrator) Close(portfolioID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if v, ok := o.views[portfolioID]; ok {
		o.closeLocked(v)
		delete(o.views, portfolioID)
	}
}

// Stop tears down every open view.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, v := range o.views {
		o.closeLocked(v)
		delete(o.views, id)
	}
}

func (o *Orchestrator) closeLocked(v *view) {
	if v.closed {
		return
	}
	v.closed = true
	v.periodic.Stop()
	if v.debounce != nil {
		v.debounce.Stop()
	}
	close(v.stop)
	o.logger.Debug().Str("portfolio", v.portfolioID).Msg("portfolio view closed")
}

// holdingsSignature identifies a holdings set by id and ticker so edits that
// matter to valuation trigger a refresh and no-op writes do not.
func holdingsSignature(holdings []models.Holding) string {
	parts := make([]string, 0, len(holdings))
	for _, h := range holdings {
		parts = append(parts, h.ID+":"+h.Ticker)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
