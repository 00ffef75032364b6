package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/service"
)

// PassRequestHandler turns pass request messages into reconciliation passes
type PassRequestHandler struct {
	passService service.PassService
	producer    producers.DeadLetterPublisher
	logger      *slog.Logger
}

func NewPassRequestHandler(
	logger *slog.Logger,
	passService service.PassService,
	producer producers.DeadLetterPublisher,
) *PassRequestHandler {
	return &PassRequestHandler{
		passService: passService,
		producer:    producer,
		logger:      logger,
	}
}

// HandleMessage returns nil when the offset may be committed. Undecodable or invalid
// requests go to the DLQ; pass failures are returned so the message is redelivered.
func (h *PassRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.PassRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Errorf("failed to unmarshal pass request: %w", err))
	}
	if err := request.Validate(); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Errorf("invalid pass request: %w", err))
	}

	logger := h.logger.With("pass_id", request.PassID.String(), "bank_account", request.BankAccount)
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}
	logger.Info("Received reconciliation pass request")

	if err := h.passService.RunPass(ctx, &request); err != nil {
		logger.Error("Reconciliation pass failed", "error", err)
		return fmt.Errorf("reconciliation pass %s failed: %w", request.PassID, err)
	}

	logger.Info("Reconciliation pass handled")
	return nil
}

func (h *PassRequestHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	h.logger.Error("Unprocessable pass request", "error", cause, "message_key", string(key))

	if h.producer == nil {
		return cause
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, cause.Error()); err != nil {
		h.logger.Error("Failed to publish pass request to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(key),
		)
		return cause
	}
	return nil
}
