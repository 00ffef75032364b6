package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
)

// Poller relays pending outbox messages to the event topic
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        MessagePublisher
	metrics          *metrics.Metrics
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher MessagePublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		metrics:          m,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is cancelled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Failed to process pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := p.publisher.Publish(ctx, msg)
		if err == nil {
			p.metrics.IncrOutboxMessage("published")
			continue
		}

		logger := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID.String())

		var undecodable ErrUndecodablePayload
		if errors.As(err, &undecodable) {
			p.metrics.IncrOutboxMessage("dead")
			continue
		}

		p.metrics.IncrOutboxMessage("failed")
		logger.Error("Failed to publish outbox message", "attempts", msg.Attempts, "error", err)

		if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
			logger.Error("Failed to increment outbox message attempts", "error", errInc)
			continue
		}

		if msg.Attempts+1 >= p.maxRetryAttempts {
			logger.Warn("Max retry attempts reached, marking outbox message FAILED_TO_PUBLISH", "attempts", msg.Attempts+1)
			if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
				logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "error", errUpdate)
				continue
			}
			p.metrics.IncrOutboxMessage("dead")
		}
	}
	return nil
}
