// Package app wires the application's components together.
package app

import (
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/handlers"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/marketdata"
	"github.com/folioworks/folio/internal/mcp"
	"github.com/folioworks/folio/internal/refresh"
	badgerstore "github.com/folioworks/folio/internal/storage/badger"
	"github.com/folioworks/folio/internal/store"
)

// App holds all application components and dependencies.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	Portfolios interfaces.PortfolioStore
	Holdings   interfaces.HoldingStore
	Reports    interfaces.ReportStore
	Users      *store.UserStore

	QuoteClient  *marketdata.Client
	QuoteCache   *marketdata.QuoteCache
	Fetcher      *marketdata.BulkFetcher
	Orchestrator *refresh.Orchestrator

	// HTTP handlers
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	AuthHandler      *handlers.AuthHandler
	PortfolioHandler *handlers.PortfolioHandler
	HoldingHandler   *handlers.HoldingHandler
	ValuationHandler *handlers.ValuationHandler
	QuoteHandler     *handlers.QuoteHandler
	ReportHandler    *handlers.ReportHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE — do not use in production")
	}

	storage, err := badgerstore.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = storage

	db, ok := storage.DB().(*badgerhold.Store)
	if !ok {
		storage.Close()
		return nil, fmt.Errorf("unexpected storage backend type")
	}

	a.Portfolios = store.NewPortfolioStore(db, logger)
	a.Holdings = store.NewHoldingStore(db, logger)
	a.Reports = store.NewReportStore(db, logger)
	a.Users = store.NewUserStore(db, logger)

	if cfg.Auth.UsersFile != "" {
		if err := a.Users.ImportUsers(cfg.Auth.UsersFile); err != nil {
			logger.Warn().Err(err).Str("file", cfg.Auth.UsersFile).Msg("user import failed")
		}
	}

	a.QuoteClient = marketdata.NewClient(cfg.Quotes, logger)
	a.QuoteCache = marketdata.NewQuoteCache(cfg.Quotes.GetCacheTTL(), storage.KeyValueStorage(), logger)
	a.Fetcher = marketdata.NewBulkFetcher(a.QuoteClient, a.QuoteCache, cfg.Quotes.GetRequestDelay(), logger)
	a.Orchestrator = refresh.NewOrchestrator(a.Portfolios, a.Holdings, a.Fetcher, a.QuoteCache, logger)

	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	jwtSecret := []byte(a.Config.Auth.JWTSecret)

	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.AuthHandler = handlers.NewAuthHandler(a.Users, jwtSecret, a.Config.Auth.SessionDuration(), a.Logger)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.Portfolios, jwtSecret, a.Logger)
	a.HoldingHandler = handlers.NewHoldingHandler(a.Portfolios, a.Holdings, a.Orchestrator, jwtSecret, a.Logger)
	a.ValuationHandler = handlers.NewValuationHandler(a.Portfolios, a.Orchestrator, jwtSecret, a.Logger)
	a.QuoteHandler = handlers.NewQuoteHandler(a.QuoteClient, a.QuoteCache, jwtSecret, a.Logger)
	a.ReportHandler = handlers.NewReportHandler(a.Portfolios, a.Reports, a.Orchestrator, jwtSecret, a.Logger)
	a.MCPHandler = mcp.NewHandler(a.Portfolios, a.Holdings, a.Reports, a.Orchestrator, jwtSecret, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close stops background refresh work and closes storage.
func (a *App) Close() error {
	if a.Orchestrator != nil {
		a.Orchestrator.Stop()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
