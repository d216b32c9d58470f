package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"bookfeed/internal/book"
	"bookfeed/internal/metrics"
)

// KafkaPublisher forwards each merged book to a Kafka topic, keyed by the
// instrument, so downstream consumers can replay the stream per instrument.
type KafkaPublisher struct {
	writer *kafka.Writer
	key    []byte
	log    *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic, instrument string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
	}
	logger.Info("kafka publisher created",
		slog.Any("brokers", brokers),
		slog.String("topic", topic),
	)
	return &KafkaPublisher{writer: writer, key: []byte(instrument), log: logger}
}

// Publish is best-effort: a broker outage must not stall the merge loop
// beyond the write timeout, so failures are logged and counted, not returned.
func (p *KafkaPublisher) Publish(ctx context.Context, merged book.Merged) {
	payload, err := json.Marshal(merged)
	if err != nil {
		p.log.Error("marshal merged book", slog.String("err", err.Error()))
		metrics.SinkPublishErrorsTotal.Inc()
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{Key: p.key, Value: payload})
	if err != nil {
		p.log.Error("kafka publish", slog.String("err", err.Error()))
		metrics.SinkPublishErrorsTotal.Inc()
	}
}

func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}
