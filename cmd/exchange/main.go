package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"

	cfg "github.com/rupeex/usdt-inr-exchange/backend/config"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/handlers"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/usecases"
	repository "github.com/rupeex/usdt-inr-exchange/backend/internal/usecases/repository"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/workers"
	"github.com/rupeex/usdt-inr-exchange/backend/pkg/database"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server timeout constants. The write timeout must exceed the security
// challenge timeout because trade submissions block until the challenge
// resolves.
const (
	readTimeoutSeconds     = 15
	writeTimeoutSeconds    = 150
	idleTimeoutSeconds     = 60
	shutdownTimeoutSeconds = 5
)

func main() {
	time.Local = time.UTC

	// Parse configuration
	config, err := cfg.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Setup logging
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if config.App.Debug {
		opts.Level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	logger.Info("Starting application with configuration",
		"debug", config.App.Debug,
		"server_port", config.HTTP.Port,
		"rate_refresh_seconds", config.Exchange.RateRefreshSeconds)

	// Find the migrations directory relative to the working directory
	migrationsPath := "./migrations"
	if workDir, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(workDir, "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "migrations")
		} else if _, err := os.Stat(filepath.Join(workDir, "..", "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "..", "migrations")
		}
	}

	// Connect to Database
	pg, err := database.New(config,
		database.MaxPoolSize(config.DB.PoolMax),
		database.ConnTimeout(config.DB.ConnectTimeout),
		database.HealthCheckPeriod(config.DB.HealthCheckPeriod),
		database.Isolation(pgx.ReadCommitted),
	)
	if err != nil {
		logger.Error("postgres connection failed", slog.String("error", err.Error()))
		return
	}
	defer pg.Close()

	// Run database migrations
	logger.Info("Running database migrations", "path", migrationsPath)
	if err = database.RunMigrations(logger, config.DB.DatabaseURL, migrationsPath); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		log.Fatal(err)
	}

	// Create repositories
	transactionsRepository := repository.NewTransactionsRepository(logger, pg)
	walletsRepository := repository.NewWalletsRepository(logger, pg)
	kycRepository := repository.NewKycRepository(logger, pg)
	accountsRepository := repository.NewAccountsRepository(logger, pg)
	alertsRepository := repository.NewAlertsRepository(logger, pg)

	// Create usecases and components
	rateSimulator := usecases.NewRateSimulator(logger, config.Exchange.RateSeed)
	kycService := usecases.NewKycService(logger, kycRepository)
	challengeBroker := usecases.NewChallengeBroker(logger,
		time.Duration(config.Exchange.ChallengeTimeoutSec)*time.Second)

	var tradeRNG *rand.Rand
	if config.Exchange.RateSeed != 0 {
		tradeRNG = rand.New(rand.NewPCG(uint64(config.Exchange.RateSeed), 1))
	}

	tradeService := usecases.NewTradeService(logger,
		transactionsRepository, walletsRepository, kycService, challengeBroker, pg.Transactor, tradeRNG)

	walletService, err := usecases.NewWalletService(logger, config.Exchange.WalletSeed, walletsRepository)
	if err != nil {
		logger.Error("Failed to create wallet service", "error", err)
		log.Fatal(err)
	}

	accountService := usecases.NewAccountService(logger, accountsRepository, accountsRepository, pg.Transactor)
	alertService := usecases.NewAlertService(logger, alertsRepository)
	achievementService := usecases.NewAchievementService(logger, transactionsRepository, kycRepository, accountsRepository)
	earningsService := usecases.NewEarningsService(logger, transactionsRepository)

	// Initialize and run workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	rateRefresher := workers.NewRateRefresher(logger, rateSimulator, alertService,
		time.Duration(config.Exchange.RateRefreshSeconds)*time.Second)
	go rateRefresher.Start(workerCtx)

	// Create handlers
	websocketManager := handlers.NewWebSocketManager(logger)
	httpHandler := handlers.NewHTTPHandler(logger,
		rateSimulator, tradeService, walletService, kycService, accountService,
		alertService, achievementService, earningsService, challengeBroker)
	wsHandler := handlers.NewWebSocketHandler(logger, rateSimulator, websocketManager)

	// Create router
	router := mux.NewRouter()
	router.Use(handlers.IdentityMiddleware)

	// Register WebSocket routes before HTTP routes
	wsHandler.RegisterRoutes(router)
	httpHandler.RegisterRoutes(router)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-Email", "X-User-Name", "X-User-Role"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + config.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  readTimeoutSeconds * time.Second,
		WriteTimeout: writeTimeoutSeconds * time.Second,
		IdleTimeout:  idleTimeoutSeconds * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "address", server.Addr)
		if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			log.Fatal(err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Stop workers before closing connections
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exited properly")
}
