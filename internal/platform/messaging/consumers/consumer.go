package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// MessageReader is the subset of kafka.Reader the consumer relies on
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads pass requests with manual offset commits
type KafkaConsumer struct {
	reader     MessageReader
	logger     *slog.Logger
	topic      string
	groupID    string
	fetchDelay time.Duration
	done       chan struct{}
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{cfg.Brokers},
		Topic:       cfg.PassTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	})
	return newKafkaConsumer(reader, logger, cfg.PassTopic, cfg.ConsumerGroup)
}

func newKafkaConsumer(reader MessageReader, logger *slog.Logger, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		logger:     logger.With("topic", topic, "group_id", groupID),
		topic:      topic,
		groupID:    groupID,
		fetchDelay: time.Second,
		done:       make(chan struct{}),
	}
}

// Subscribe starts consuming in the background until ctx is cancelled.
// Offsets are committed only after handler succeeds, so failed messages are redelivered.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return errors.New("message handler is required")
	}
	c.logger.Info("Subscribed to Kafka topic")

	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					c.logger.Info("Context canceled, stopping consumer")
					return
				}
				c.logger.Error("Failed to fetch message from Kafka", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.fetchDelay):
				}
				continue
			}
			c.handle(ctx, msg, handler)
		}
	}()

	return nil
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message, handler MessageHandler) {
	logger := c.logger.With(
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
	)
	logger.Debug("Received message from Kafka")

	if err := handler(ctx, msg.Key, msg.Value); err != nil {
		logger.Error("Failed to process message, will not commit offset", "error", err)
		return
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Error("Failed to commit message after successful processing", "error", err)
		return
	}
	logger.Debug("Message committed")
}

// Done is closed once the consume loop has exited
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

var _ Consumer = (*KafkaConsumer)(nil)
