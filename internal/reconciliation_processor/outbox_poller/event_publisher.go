package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
)

// MessagePublisher delivers one outbox message and records the result on it
type MessagePublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// ErrUndecodablePayload marks a message whose payload can never be published
type ErrUndecodablePayload struct {
	OutboxID int64
	Err      error
}

func (e ErrUndecodablePayload) Error() string {
	return fmt.Sprintf("outbox message %d has an undecodable payload: %v", e.OutboxID, e.Err)
}

func (e ErrUndecodablePayload) Unwrap() error {
	return e.Err
}

// EventMessagePublisher forwards reconciliation events to Kafka
type EventMessagePublisher struct {
	outboxRepo outbox.Repository
	events     producers.EventPublisher
	logger     *slog.Logger
}

func NewEventMessagePublisher(
	outboxRepo outbox.Repository,
	events producers.EventPublisher,
	logger *slog.Logger,
) MessagePublisher {
	return &EventMessagePublisher{
		outboxRepo: outboxRepo,
		events:     events,
		logger:     logger,
	}
}

// Publish sends the event and marks the message PROCESSED. A publish that succeeds
// but fails to mark the message is delivered again on the next tick.
func (p *EventMessagePublisher) Publish(ctx context.Context, message *outbox.Message) error {
	logger := p.logger.With("outbox_id", message.ID, "transaction_id", message.TransactionID.String())

	event, err := message.GetEvent()
	if err != nil {
		logger.Error("Failed to decode reconciliation event from outbox payload", "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			logger.Error("Failed to mark undecodable outbox message", "error", updateErr)
		}
		return ErrUndecodablePayload{OutboxID: message.ID, Err: err}
	}

	if err := p.events.PublishEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to publish reconciliation event for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Event published but outbox message not marked PROCESSED", "error", err)
		return fmt.Errorf("failed to mark outbox %d as PROCESSED: %w", message.ID, err)
	}

	logger.Debug("Published reconciliation event", "status", string(event.Status))
	return nil
}
