package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"cryptotrack/config"
	"cryptotrack/internal/adapters/cache"
	coingeckoadapter "cryptotrack/internal/adapters/coingecko"
	httpserver "cryptotrack/internal/adapters/http/server"
	loggeradapter "cryptotrack/internal/adapters/logger"
	"cryptotrack/internal/adapters/sqlite"
	alertservice "cryptotrack/internal/application/alert"
	authservice "cryptotrack/internal/application/auth"
	portfolioservice "cryptotrack/internal/application/portfolio"
	priceservice "cryptotrack/internal/application/price"
	"cryptotrack/internal/application/ratelimiter"
	"cryptotrack/internal/application/scheduler"
	transactionservice "cryptotrack/internal/application/transaction"
	domainPrice "cryptotrack/internal/domain/price"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := loggeradapter.NewLogger(cfg.App.Development(), cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		// stdout/stderr sync errors are expected on some platforms
		_ = logger.Sync()
	}()

	logger.Info("Starting application",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Application failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("Application stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *loggeradapter.Logger) error {
	if err := initializeDatabaseDir(cfg, logger); err != nil {
		return err
	}

	db, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	userRepo := sqlite.NewUserRepository(db)
	transactionRepo := sqlite.NewTransactionRepository(db)
	alertRepo := sqlite.NewAlertRepository(db)

	priceProvider := newPriceProvider(cfg, logger)

	authService := authservice.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost, logger)
	transactionService := transactionservice.NewService(transactionRepo, cfg.Transaction.StrictHistory, logger)
	portfolioService := portfolioservice.NewService(transactionRepo, priceProvider, cfg.Price.Currency, logger)
	alertService := alertservice.NewService(alertRepo, priceProvider, cfg.Price.Currency, logger)

	if cfg.Alerts.Enabled {
		sched := scheduler.New(logger, cfg.Price.RequestTimeout)
		if err := sched.AddAlertCheck(cfg.Alerts.Schedule, alertService); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				logger.Warn("Scheduler did not stop in time", zap.Error(err))
			}
		}()
	}

	handlerAdapter := httpserver.NewHandlerAdapter(
		authService,
		transactionService,
		portfolioService,
		alertService,
		cfg.App.Name,
		version,
		logger,
	)

	serverConfig := httpserver.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	server := httpserver.NewServer(serverConfig, handlerAdapter, authService, logger)

	logger.Info("Server configured",
		zap.String("address", cfg.Server.Addr()),
		zap.String("price_provider", cfg.Price.Provider),
		zap.String("currency", cfg.Price.Currency),
		zap.Bool("alerts_enabled", cfg.Alerts.Enabled),
		zap.Bool("strict_history", cfg.Transaction.StrictHistory),
	)

	return server.Run(ctx)
}

// newPriceProvider builds the cached, rate limited price source. With the
// mock provider selected there is nothing to fall back to.
func newPriceProvider(cfg *config.Config, logger *loggeradapter.Logger) domainPrice.Provider {
	mockProvider := coingeckoadapter.NewMockProvider(nil)

	var primary, fallback domainPrice.Provider
	if strings.EqualFold(cfg.Price.Provider, "mock") {
		primary = mockProvider
	} else {
		if cfg.Price.CoinGeckoAPIKey == "" {
			logger.Warn("CoinGecko API key not set, using the public rate limits")
		}
		client := coingeckoadapter.NewClient(
			&http.Client{Timeout: cfg.Price.RequestTimeout},
			cfg.Price.CoinGeckoURL,
			cfg.Price.CoinGeckoAPIKey,
		)
		primary = coingeckoadapter.NewPriceProvider(client)
		if cfg.Price.FallbackEnabled {
			fallback = mockProvider
			logger.Info("Price fallback enabled", zap.String("provider", "mock"))
		}
	}

	priceCache := cache.NewCache[string, domainPrice.Price](1000, cfg.Price.CacheTTL)

	return priceservice.NewCacheService(
		priceCache,
		primary,
		fallback,
		ratelimiter.PerSecond(cfg.Price.RateLimitRPS),
		logger,
	)
}

// initializeDatabaseDir ensures the database directory exists
func initializeDatabaseDir(cfg *config.Config, logger *loggeradapter.Logger) error {
	if strings.HasPrefix(cfg.Database.Path, ":memory:") {
		return nil
	}

	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger.Info("Database directory ready", zap.String("path", dataDir))
	return nil
}
