package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/porter-wallet/porter_service/internal/adapters/chain"
	"github.com/porter-wallet/porter_service/internal/api/handlers"
	"github.com/porter-wallet/porter_service/internal/api/routes"
	"github.com/porter-wallet/porter_service/internal/domain/services/asset"
	"github.com/porter-wallet/porter_service/internal/domain/services/balance"
	"github.com/porter-wallet/porter_service/internal/domain/services/transfer"
	"github.com/porter-wallet/porter_service/internal/infrastructure/cache"
	"github.com/porter-wallet/porter_service/internal/infrastructure/config"
	"github.com/porter-wallet/porter_service/internal/infrastructure/database"
	"github.com/porter-wallet/porter_service/internal/infrastructure/repositories"
	trade_confirmation "github.com/porter-wallet/porter_service/internal/workers/trade_confirmation"
	"github.com/porter-wallet/porter_service/pkg/graceful"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	log.Info("Starting porter service",
		"environment", cfg.Environment,
		"rpc_endpoint", cfg.Chain.RPCEndpoint,
		"commitment", cfg.Chain.Commitment,
	)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Redis is a read-through cache for asset lookups; running without
	// it is slower, not broken
	redisClient, err := cache.NewRedisClient(&cfg.Redis, log.Zap())
	if err != nil {
		log.Warn("Redis unavailable, asset caching disabled", "error", err)
		redisClient = nil
	}

	rpcClient := rpc.New(cfg.Chain.RPCEndpoint)
	ledger := chain.NewClient(rpcClient, cfg.Chain.Commitment, cfg.Chain.MaxSubmitRetries, log)
	gateway := chain.NewGateway(ledger, log)

	tradeRepo := repositories.NewTradeRepository(db, log.Zap())
	assetRepo := repositories.NewAssetRepository(db, log.Zap())

	assetDirectory := asset.NewDirectory(assetRepo, redisClient, log)
	transferService := transfer.NewService(
		gateway,
		tradeRepo,
		assetDirectory,
		time.Duration(cfg.Chain.ConfirmInterval)*time.Second,
		time.Duration(cfg.Chain.ConfirmTimeout)*time.Second,
		log,
	)
	balanceService := balance.NewService(gateway, assetDirectory, log)

	sweeper := trade_confirmation.NewWorker(
		tradeRepo,
		transferService,
		cfg.Workers.SweepSchedule,
		cfg.Workers.SweepBatch,
		log,
	)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start confirmation sweeper", "error", err)
	}

	router := routes.SetupRouter(cfg, &routes.Handlers{
		Transfer: handlers.NewTransferHandlers(transferService, log),
		Balance:  handlers.NewBalanceHandlers(balanceService, log),
		Health:   handlers.NewHealthHandlers(db, redisClient, gateway),
	}, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	shutdown := graceful.NewShutdownManager(server, db, log)
	shutdown.Register(sweeper)
	shutdown.Register(transferService)

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	shutdown.WaitForShutdown()
}
