package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/data/mongo"
	"github.com/bank-reconciliation-engine/internal/data/postgres"
	"github.com/bank-reconciliation-engine/internal/logger"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/consumers"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/components"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/consumer"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/outbox_poller"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("reconciliation_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Reconciliation Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Applies pending migrations before returning
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
	if err := mongo.EnsureIndexes(appCtx, mongoDB.Database()); err != nil {
		log.Error("Failed to create MongoDB indexes", "error", err)
		os.Exit(1)
	}

	repos := components.Repositories{
		Transactions: postgres.NewBankTransactionRepository(log, postgresDB),
		Candidates:   postgres.NewCandidateRepository(log, postgresDB),
		Rules:        postgres.NewRuleRepository(log, postgresDB),
		Outbox:       postgres.NewOutboxRepository(log, postgresDB),
		Proposals:    mongo.NewProposalRepository(log, mongoDB.Database()),
		Passes:       mongo.NewPassRepository(log, mongoDB.Database()),
	}

	m := metrics.NewMetrics()

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize event Kafka producer", "error", err)
		os.Exit(1)
	}

	passService := components.CreatePassService(postgresDB, repos, m, log, cfg)

	passRequestHandler := consumer.NewPassRequestHandler(log, passService, dlqProducer)
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		repos.Outbox,
		outbox_poller.NewEventMessagePublisher(repos.Outbox, eventProducer, log.With("component", "event_publisher")),
		m,
		log.With("component", "outbox_poller"),
	)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           m.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	g, gCtx := errgroup.WithContext(appCtx)

	g.Go(func() error {
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.PassTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(gCtx, passRequestHandler.HandleMessage); err != nil {
			return fmt.Errorf("kafka consumer error: %w", err)
		}
		<-kafkaConsumer.Done()
		return nil
	})

	g.Go(func() error {
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		log.Info("Starting metrics listener", "port", cfg.Server.Port)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listener error: %w", err)
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-gCtx.Done():
		log.Error("Service error occurred", "error", context.Cause(gCtx))
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping metrics listener", "error", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
	}()

	var serviceErr error
	select {
	case serviceErr = <-waitErr:
		log.Info("All services stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if wpService, ok := passService.(*service.WorkerPoolPassService); ok {
		wpService.Shutdown()
	}

	var closeErr error
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		closeErr = err
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
		closeErr = err
	}
	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing event Kafka producer", "error", err)
		closeErr = err
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		closeErr = err
	}

	if serviceErr != nil || closeErr != nil {
		log.Error("Reconciliation Processor shutdown completed with errors", "error", errors.Join(serviceErr, closeErr))
		os.Exit(1)
	}
	log.Info("Reconciliation Processor shutdown completed successfully")
}
