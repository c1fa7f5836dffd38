package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/config"
	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// SourceHeader names the message header carrying the departure board ID.
const SourceHeader = "source"

// fetcher is the subset of *kafkago.Reader used by Reader.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Reader consumes raw departure records from a Kafka topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        fetcher
	flushInterval time.Duration
	idleTimeout   time.Duration
	logger        *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaSourceTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{
		reader:        r,
		flushInterval: cfg.BatchFlushInterval,
		idleTimeout:   cfg.KafkaIdleTimeout,
		logger:        logger,
	}
}

// ExtractBatch waits up to the idle timeout for the first message, then
// collects more until batchSize is reached or the flush interval elapses.
// It returns io.EOF when the topic stays empty for the whole idle timeout.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	first, err := r.fetchWithin(ctx, r.idleTimeout)
	if err != nil {
		if isDeadline(err) && ctx.Err() == nil {
			return nil, io.EOF
		}
		return nil, err
	}

	batch := make([]domain.RawEvent, 0, batchSize)
	batch = append(batch, r.toRawEvent(first))

	deadline := time.Now().Add(r.flushInterval)
	for len(batch) < batchSize {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		msg, err := r.fetchWithin(ctx, remaining)
		if err != nil {
			if isDeadline(err) && ctx.Err() == nil {
				break
			}
			// Return what we have; the error resurfaces on the next call.
			r.logger.Warn("fetch interrupted, returning partial batch", "error", err, "batch_size", len(batch))
			break
		}
		batch = append(batch, r.toRawEvent(msg))
	}
	return batch, nil
}

func (r *Reader) fetchWithin(ctx context.Context, d time.Duration) (kafkago.Message, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return r.reader.FetchMessage(fetchCtx)
}

func (r *Reader) toRawEvent(msg kafkago.Message) domain.RawEvent {
	raw := mapMessageToRawEvent(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// mapMessageToRawEvent copies a Kafka message into a domain RawEvent. The
// board ID comes from the source header; an unknown ID leaves Source empty
// and the raw value stays in Headers.
func mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	source, _ := domain.ParseSourceID(headers[SourceHeader])
	return domain.RawEvent{
		Source:    source,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
