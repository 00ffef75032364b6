package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

// newTopicWriter makes sure topic exists and returns a writer for it.
// Async writers report delivery failures through the completion log only.
func newTopicWriter(logger *slog.Logger, cfg *config.KafkaConfig, topic string, async bool) (*kafka.Writer, error) {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for topic %s: %w", topic, err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists: %w", topic, err)
	}

	acks := kafka.RequireAll
	if async {
		acks = kafka.RequireOne
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		Async:        async,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages", "topic", topic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Wrote messages", "topic", topic, "count", len(messages))
			}
		},
	}, nil
}

// createKafkaTopicIfNotExists creates Kafka topic if not found, retries on partition read errors
func createKafkaTopicIfNotExists(conn *kafka.Conn, topicName string, numPartitions int, replicationFactor int, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	for i := 0; i < 5; i++ {
		partitions, err = conn.ReadPartitions(topicName)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions, retrying", "topic", topicName, "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}
	if err := conn.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}
	log.Info("Created Kafka topic", "topic", topicName, "partitions", topicConfig.NumPartitions)
	return nil
}
