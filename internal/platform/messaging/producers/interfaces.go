package producers

import (
	"context"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// PassRequestPublisher hands bulk pass requests to the reconciliation processor
type PassRequestPublisher interface {
	PublishPassRequest(ctx context.Context, request *shared.PassRequest) error
	Close() error
}

// EventPublisher announces reconciliation outcomes to downstream consumers
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *reconciliation.Event) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
