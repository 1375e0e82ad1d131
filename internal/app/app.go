// Package app wires configuration, storage, clients and services into the
// running application.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/totalreturn/internal/clients/cached"
	"github.com/bobmcallan/totalreturn/internal/clients/eodhd"
	"github.com/bobmcallan/totalreturn/internal/clients/yahoo"
	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/interfaces"
	"github.com/bobmcallan/totalreturn/internal/services/ledger"
	"github.com/bobmcallan/totalreturn/internal/services/performance"
	"github.com/bobmcallan/totalreturn/internal/storage"
)

// App holds all initialized services, clients and storage.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Storage            interfaces.StorageManager
	Prices             interfaces.PriceProvider
	LedgerService      interfaces.LedgerService
	PerformanceService interfaces.PerformanceService
	StartupTime        time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, the price provider chain and
// the computation services. configPath may be empty, in which case the
// default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, TOTALRETURN_CONFIG, binary dir,
	// then the development fallback.
	if configPath == "" {
		configPath = os.Getenv("TOTALRETURN_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "totalreturn.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/totalreturn.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	prices := newPriceProvider(config, storageManager, logger)

	a := &App{
		Config:             config,
		Logger:             logger,
		Storage:            storageManager,
		Prices:             prices,
		LedgerService:      ledger.NewService(logger),
		PerformanceService: performance.NewService(prices, logger),
		StartupTime:        startupStart,
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("provider", config.Prices.Provider).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return a, nil
}

// newPriceProvider builds the configured upstream client and wraps it with
// the persistent cache.
func newPriceProvider(config *common.Config, storageManager interfaces.StorageManager, logger *common.Logger) interfaces.PriceProvider {
	var upstream interfaces.PriceProvider

	switch config.Prices.Provider {
	case "eodhd":
		if config.Prices.APIKey == "" {
			logger.Warn().Msg("EODHD selected without an API key, falling back to Yahoo")
			upstream = newYahooClient(config, logger)
			break
		}
		opts := []eodhd.ClientOption{
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Prices.RateLimit),
			eodhd.WithTimeout(config.Prices.GetTimeout()),
		}
		if config.Prices.BaseURL != "" {
			opts = append(opts, eodhd.WithBaseURL(config.Prices.BaseURL))
		}
		upstream = eodhd.NewClient(config.Prices.APIKey, opts...)
	default:
		upstream = newYahooClient(config, logger)
	}

	return cached.NewProvider(
		upstream,
		storageManager.PriceStorage(),
		config.Prices.GetQuoteTTL(),
		config.Prices.GetHistoryTTL(),
		logger,
	)
}

func newYahooClient(config *common.Config, logger *common.Logger) *yahoo.Client {
	opts := []yahoo.ClientOption{
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Prices.RateLimit),
		yahoo.WithTimeout(config.Prices.GetTimeout()),
	}
	if config.Prices.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(config.Prices.BaseURL))
	}
	return yahoo.NewClient(opts...)
}

// Close releases application resources.
func (a *App) Close() {
	if err := a.Storage.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to close storage")
	}
}
