// Package app wires configuration, storage, scrape clients and services
// into a runnable Corsair instance.
package app

import (
	"fmt"

	"github.com/calriss/corsair/internal/clients/rsi"
	"github.com/calriss/corsair/internal/clients/scrape"
	"github.com/calriss/corsair/internal/clients/uex"
	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/server"
	"github.com/calriss/corsair/internal/services/ledger"
	"github.com/calriss/corsair/internal/services/market"
	surreal "github.com/calriss/corsair/internal/storage/surrealdb"
)

// App holds the composed application.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager
	Ledger  interfaces.LedgerService
	Market  interfaces.MarketService
	Profile interfaces.ProfileClient
	Server  *server.Server
}

// NewApp builds the application from config files. Later paths override
// earlier ones; environment variables override both.
func NewApp(configPaths ...string) (*App, error) {
	config, err := common.LoadConfig(configPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)
	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Msg("Starting Corsair")

	storage, err := surreal.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	marketClient := uex.NewClient(
		uex.WithBaseURL(config.Clients.Market.BaseURL),
		uex.WithLogger(logger),
		uex.WithFetcher(scrape.NewFetcher(
			scrape.WithLogger(logger),
			scrape.WithRateLimit(config.Clients.Market.RateLimit),
			scrape.WithTimeout(config.Clients.Market.GetTimeout()),
		)),
	)

	profileClient := rsi.NewClient(
		rsi.WithBaseURL(config.Clients.Profile.BaseURL),
		rsi.WithLogger(logger),
		rsi.WithFetcher(scrape.NewFetcher(
			scrape.WithLogger(logger),
			scrape.WithRateLimit(config.Clients.Profile.RateLimit),
			scrape.WithTimeout(config.Clients.Profile.GetTimeout()),
		)),
	)

	marketService := market.NewService(marketClient, config.Ledger.GetCatalogTTL(), logger)
	ledgerService := ledger.NewService(
		storage,
		profileClient,
		config.Ledger.GetSessionTTL(),
		config.Ledger.MaxCrewSize,
		logger,
	)

	app := &App{
		Config:  config,
		Logger:  logger,
		Storage: storage,
		Ledger:  ledgerService,
		Market:  marketService,
		Profile: profileClient,
	}
	app.Server = server.NewServer(config, logger, ledgerService, marketService, profileClient)

	return app, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
	}
	return nil
}
