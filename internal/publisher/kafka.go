package publisher

import (
	"context"
	"log/slog"

	"github.com/fjod/gomarketplace/internal/codec"
	"github.com/fjod/gomarketplace/internal/domain"
	"github.com/segmentio/kafka-go"
)

const snapshotEventType = "cart.snapshot"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards every published cart snapshot to a Kafka topic.
// The writer runs in async mode so the dispatching goroutine never waits on the broker.
type KafkaPublisher struct {
	key    string
	writer messageWriter
	logger *slog.Logger
}

func NewKafkaPublisher(key, topic string, logger *slog.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to publish cart snapshot", "messages", len(messages), "error", err)
			}
		},
	}
	return &KafkaPublisher{key: key, writer: w, logger: logger}
}

// Observe matches cart.Observer.
func (p *KafkaPublisher) Observe(items domain.Snapshot) {
	value, err := codec.Encode(items)
	if err != nil {
		p.logger.Warn("failed to encode cart snapshot", "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(p.key),
		Value: []byte(value),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(snapshotEventType)},
		},
	}

	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.logger.Warn("failed to publish cart snapshot", "error", err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
