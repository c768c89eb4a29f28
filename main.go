package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/yourusername/gpay-transactions/channels"
	"github.com/yourusername/gpay-transactions/config"
	"github.com/yourusername/gpay-transactions/handlers"
	"github.com/yourusername/gpay-transactions/queue"
	"github.com/yourusername/gpay-transactions/services"
	"github.com/yourusername/gpay-transactions/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Notification outbox
	outbox, err := queue.NewBolt(cfg.QueuePath)
	if err != nil {
		log.Fatalf("Failed to open notification queue: %v", err)
	}
	defer outbox.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := queue.NewWorker(outbox, cfg.NotifyMaxAttempts, cfg.NotifyTimeout)
	go worker.Run(ctx)

	resolver := channels.NewDefaultResolver(cfg)
	if err := handlers.RegisterValidators(resolver.Names()); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	gormStore := store.NewGorm(db)
	router := handlers.NewRouter(cfg,
		handlers.NewAuthHandler(gormStore, cfg),
		handlers.NewChargeHandler(services.NewChargeService(gormStore, gormStore, outbox, resolver)),
		handlers.NewTransferHandler(services.NewTransferService(gormStore, resolver), cfg),
	)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting transactions API server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
