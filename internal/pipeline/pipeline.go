package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw records from the source. It returns
// io.EOF once the source has nothing more to deliver.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw record into a canonical flight. ok is false when
// the record describes a flight that should not be stored yet.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (flight domain.Flight, ok bool, err error)
}

// BatchLoader writes normalized flights to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, flights []domain.Flight) error
}

// Pipeline orchestrates the extract-transform-load loop for one ingestion run.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	drained     atomic.Bool
	batches     atomic.Int64
	records     atomic.Int64
	batchSize   int
}

// Status is a point-in-time view of an ingestion run.
type Status struct {
	Batches int64 `json:"batches"`
	Records int64 `json:"records"`
	Drained bool  `json:"drained"`
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Status reports how far the run has progressed. Safe for concurrent use.
func (p *Pipeline) Status() Status {
	return Status{
		Batches: p.batches.Load(),
		Records: p.records.Load(),
		Drained: p.drained.Load(),
	}
}

// CheckReadiness returns nil once the pipeline has processed a batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any records yet")
	}
	return nil
}

// Run executes the batch loop until the source is drained, the context is
// cancelled, or the loader fails. Loader failures and unreadable sources are
// returned; other extraction failures are retried with backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		more, err := p.processBatch(ctx, &backoff, maxBackoff)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false when the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) (bool, error) {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	drained := errors.Is(err, io.EOF)
	if errors.Is(err, domain.ErrSourceUnreadable) {
		return false, p.failSource(ctx, rawBatch, err)
	}
	if err != nil && !drained {
		if ctx.Err() != nil {
			return false, nil
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff), nil
	}

	if len(rawBatch) == 0 {
		p.logger.Info("source drained")
		p.drained.Store(true)
		return false, nil
	}

	p.metrics.RecordsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	if err := p.transformAndLoad(ctx, rawBatch); err != nil {
		return false, err
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.batches.Add(1)
	p.records.Add(int64(len(rawBatch)))

	if drained {
		p.logger.Info("source drained")
		p.drained.Store(true)
		return false, nil
	}
	return true, nil
}

// failSource loads the records read before an unrecoverable extract error
// and returns that error.
func (p *Pipeline) failSource(ctx context.Context, rawBatch []domain.RawEvent, cause error) error {
	p.logger.Error("source unreadable, stopping", "error", cause, "partial_batch", len(rawBatch))
	if len(rawBatch) > 0 {
		p.metrics.RecordsConsumed.Add(float64(len(rawBatch)))
		if err := p.transformAndLoad(ctx, rawBatch); err != nil {
			return errors.Join(cause, err)
		}
		p.batches.Add(1)
		p.records.Add(int64(len(rawBatch)))
	}
	return fmt.Errorf("extract: %w", cause)
}

// transformAndLoad normalizes each record in the batch, loads the flights,
// and commits offsets. Records that fail normalization are logged and skipped.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawEvent) error {
	flights := make([]domain.Flight, 0, len(rawBatch))

	for _, raw := range rawBatch {
		f, ok, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("normalize failed, skipping record",
				"error", err,
				"source", raw.Source,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.NormalizeErrors.WithLabelValues(string(raw.Source)).Inc()
			continue
		}
		if !ok {
			p.metrics.IncompleteSkipped.Inc()
			continue
		}
		flights = append(flights, f)
	}

	if len(flights) > 0 {
		if err := p.loader.LoadBatch(ctx, flights); err != nil {
			return fmt.Errorf("load batch of %d flights: %w", len(flights), err)
		}
	}

	for _, raw := range rawBatch {
		p.commitOffset(ctx, raw)
	}
	return nil
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
