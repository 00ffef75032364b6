package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bank-reconciliation-engine/internal/api_gateway"
	"github.com/bank-reconciliation-engine/internal/api_gateway/service"
	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/data/mongo"
	"github.com/bank-reconciliation-engine/internal/data/postgres"
	"github.com/bank-reconciliation-engine/internal/logger"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/components"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	kafkaProducer, err := producers.NewPassRequestProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize pass request Kafka producer", "error", err)
		os.Exit(1)
	}

	transactionRepo := postgres.NewBankTransactionRepository(log, postgresDB)
	candidateRepo := postgres.NewCandidateRepository(log, postgresDB)
	ruleRepo := postgres.NewRuleRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	proposalRepo := mongo.NewProposalRepository(log, mongoDB.Database())
	passRepo := mongo.NewPassRepository(log, mongoDB.Database())

	// Accepted proposals go through the same atomic write path as automatic matches
	statusWriter := components.NewStatusWriter(postgresDB, transactionRepo, candidateRepo, outboxRepo, log.With("component", "status_writer"))

	passService := service.NewPassService(log, passRepo, kafkaProducer)
	transactionService := service.NewTransactionService(
		log,
		transactionRepo,
		proposalRepo,
		ruleRepo,
		statusWriter,
		engine.NewCategorizer(cfg.Reconciliation.CategorizationWorkers),
	)
	ruleService := service.NewRuleService(log, ruleRepo, transactionRepo)

	server, err := api_gateway.NewServer(log, cfg, passService, transactionService, ruleService, metrics.NewMetrics())
	if err != nil {
		log.Error("Failed to initialize REST server", "error", err)
		os.Exit(1)
	}
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain in-flight requests before closing the stores they use
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Server shutdown completed")
}
