package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// JSONProducer writes JSON encoded values to one topic. Messages are keyed by bank account so
// all traffic of an account stays on one partition.
type JSONProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewPassRequestProducer creates the API gateway producer for pass requests
func NewPassRequestProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*JSONProducer, error) {
	if cfg.PassTopic == "" {
		return nil, fmt.Errorf("kafka pass topic is not configured")
	}
	writer, err := newTopicWriter(logger, cfg, cfg.PassTopic, false)
	if err != nil {
		return nil, err
	}
	return &JSONProducer{logger: logger, writer: writer, topic: cfg.PassTopic}, nil
}

// NewEventProducer creates the outbox poller producer for reconciliation events
func NewEventProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*JSONProducer, error) {
	if cfg.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}
	writer, err := newTopicWriter(logger, cfg, cfg.EventTopic, false)
	if err != nil {
		return nil, err
	}
	return &JSONProducer{logger: logger, writer: writer, topic: cfg.EventTopic}, nil
}

func (p *JSONProducer) PublishPassRequest(ctx context.Context, request *shared.PassRequest) error {
	return p.publish(ctx, request.BankAccount, request, kafka.Header{Key: "pass-id", Value: []byte(request.PassID.String())})
}

func (p *JSONProducer) PublishEvent(ctx context.Context, event *reconciliation.Event) error {
	return p.publish(ctx, event.BankAccount, event, kafka.Header{Key: "status", Value: []byte(event.Status)})
}

func (p *JSONProducer) publish(ctx context.Context, key string, value interface{}, headers ...kafka.Header) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message for topic %s: %w", p.topic, err)
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   jsonValue,
		Headers: headers,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published message", "topic", p.topic, "key", key)
	return nil
}

func (p *JSONProducer) Close() error {
	p.logger.Info("Closing Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

var (
	_ PassRequestPublisher = (*JSONProducer)(nil)
	_ EventPublisher       = (*JSONProducer)(nil)
)
