package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/madame-president/normaDB/internal/api"
	"github.com/madame-president/normaDB/internal/config"
	"github.com/madame-president/normaDB/internal/database"
	"github.com/madame-president/normaDB/internal/mempool"
	"github.com/madame-president/normaDB/internal/pricing"
	"github.com/madame-president/normaDB/internal/repository"
	"github.com/madame-president/normaDB/internal/scheduler"
	"github.com/madame-president/normaDB/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open and migrate the transaction store
	txDB, err := database.Open(cfg.Storage.TxPath)
	if err != nil {
		log.Fatalf("Failed to open transaction store: %v", err)
	}
	defer txDB.Close()
	if err := database.MigrateTransactionStore(txDB); err != nil {
		log.Fatalf("Failed to migrate transaction store: %v", err)
	}

	// Open and migrate the price store
	priceDB, err := database.Open(cfg.Storage.PricePath)
	if err != nil {
		log.Fatalf("Failed to open price store: %v", err)
	}
	defer priceDB.Close()
	if err := database.MigratePriceStore(priceDB); err != nil {
		log.Fatalf("Failed to migrate price store: %v", err)
	}

	log.Printf("Connected to stores: %s, %s", cfg.Storage.TxPath, cfg.Storage.PricePath)

	// Create upstream clients
	explorerClient := mempool.NewClient(cfg.API.TxBaseURL, cfg.Upstream.Timeout, cfg.Upstream.MaxRetries, cfg.Upstream.RetryBase)
	historicalClient := pricing.NewHistoricalClient(cfg.API.HistoricalPriceBaseURL, cfg.Upstream.Timeout, cfg.Upstream.MaxRetries, cfg.Upstream.RetryBase)
	liveClient := pricing.NewLiveClient(cfg.API.LivePriceBaseURL, cfg.Upstream.Timeout, cfg.Upstream.MaxRetries, cfg.Upstream.RetryBase)

	// Create repositories
	txRepo := repository.NewTransactionRepository(txDB)
	priceRepo := repository.NewPriceRepository(priceDB)
	closingRepo := repository.NewClosingPriceRepository(priceDB)

	// Create services
	systemService := service.NewSystemService(txDB, priceDB)
	priceService := service.NewPriceService(priceRepo, historicalClient)
	syncService := service.NewSyncService(cfg.Fund.Address, txRepo, priceRepo, priceService, explorerClient)
	fundService := service.NewFundService(txRepo, priceRepo, closingRepo, liveClient)

	// Create router
	router := api.NewRouter(systemService, fundService, syncService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Optional background sync
	if cfg.Sync.Schedule != "" {
		syncScheduler, err := scheduler.New(cfg.Sync.Schedule, syncService)
		if err != nil {
			log.Fatalf("Invalid sync schedule %q: %v", cfg.Sync.Schedule, err)
		}
		syncScheduler.Start()
		log.Printf("Background sync scheduled: %s", cfg.Sync.Schedule)

		group.Go(func() error {
			<-ctx.Done()
			syncScheduler.Stop()
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()

		log.Println("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	log.Println("Server exited")
}
