package kafka

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/flight-delay-etl/internal/config"
	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes raw departure records to the source topic. The replay
// tool and integration tests use it to feed the pipeline.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured source topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSourceTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch sends the records in a single WriteMessages call.
func (w *Writer) PublishBatch(ctx context.Context, records []domain.RawEvent) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msgs[i] = rawEventToMessage(records[i])
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("records published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// rawEventToMessage is the inverse of mapMessageToRawEvent.
func rawEventToMessage(raw domain.RawEvent) kafkago.Message {
	key := raw.Key
	if len(key) == 0 {
		key = []byte(raw.Source)
	}
	return kafkago.Message{
		Key:   key,
		Value: raw.Value,
		Headers: []kafkago.Header{
			{Key: SourceHeader, Value: []byte(raw.Source)},
		},
	}
}
