// Package pipeline orchestrates the extract-assess-load loop over a finite
// close-approach window.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
	"github.com/orbitwatch/neo-hazard-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw catalog rows from the source.
// An empty batch with a nil error means the window is exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error)
}

// Assessor converts a raw catalog row into an assessed hazard event.
type Assessor interface {
	Assess(ctx context.Context, raw domain.RawRecord) (domain.HazardEvent, error)
}

// BatchLoader writes multiple hazard events to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.HazardEvent) error
}

// Pipeline orchestrates the extract-assess-load loop.
type Pipeline struct {
	extractor BatchExtractor
	assessor  Assessor
	loaders   []BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	finished  atomic.Bool
	batches   atomic.Int64
	records   atomic.Int64
	batchSize int
}

// New creates a Pipeline with the given stages and observability. Events are
// loaded to every loader; a failure in any of them fails the batch.
func New(e BatchExtractor, a Assessor, loaders []BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		assessor:  a,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil if the pipeline has processed at least one batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any records yet")
	}
	return nil
}

// Run executes the batch loop until the window is exhausted or the context is
// cancelled. Unlike a streaming consumer this run terminates: the source is a
// bounded date window, not an endless topic.
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

		done, err := p.processBatch(ctx, &backoff, maxBackoff)
		if err != nil {
			return err
		}
		if done {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Info("pipeline finished, window exhausted",
				"batches", p.batches.Load(),
				"records", p.records.Load(),
			)
			p.ready.Store(true)
			p.finished.Store(true)
			return nil
		}
	}
}

// processBatch runs one extract-assess-load cycle. Returns done=true when the
// extractor reports the window exhausted.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) (bool, error) {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return true, nil
		}
		p.logger.Error("extract batch failed", "error", err)
		return !p.backoffOrStop(ctx, backoff, maxBackoff), nil
	}

	if len(rawBatch) == 0 {
		return true, nil
	}

	p.metrics.RecordsFetched.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.assessAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return true, nil
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.batches.Add(1)
		p.records.Add(int64(loaded))
		p.ready.Store(true)
	}
	return false, nil
}

// WindowProgress reports how many batches and records have been loaded so far
// and whether the close-approach window has been drained.
func (p *Pipeline) WindowProgress() (batches, records int64, finished bool) {
	return p.batches.Load(), p.records.Load(), p.finished.Load()
}

// assessAndLoad assesses each row in the batch, skipping failures, and loads
// the successes to every loader. A failed load retries the same events after
// backoff until it succeeds or the context is cancelled: the extractor has
// already advanced past this batch, so falling through would lose it.
// Loaders may see a batch more than once; delivery is at least once.
// Returns the number of loaded events and false if the pipeline should stop.
func (p *Pipeline) assessAndLoad(ctx context.Context, rawBatch []domain.RawRecord, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	events := make([]domain.HazardEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		event, err := p.assessor.Assess(ctx, raw)
		if err != nil {
			p.logger.Warn("assessment failed, skipping record",
				"error", err,
				"source", raw.Source,
			)
			p.metrics.AssessErrors.Inc()
			continue
		}
		events = append(events, event)
	}

	if len(events) == 0 {
		return 0, true
	}

	for {
		err := p.loadAll(ctx, events)
		if err == nil {
			break
		}
		p.logger.Error("load batch failed, retrying", "error", err, "batch_size", len(events))
		if !p.backoffOrStop(ctx, backoff, maxBackoff) {
			return 0, false
		}
	}

	p.metrics.RecordsAssessed.Add(float64(len(events)))
	return len(events), true
}

func (p *Pipeline) loadAll(ctx context.Context, events []domain.HazardEvent) error {
	for _, loader := range p.loaders {
		if err := loader.LoadBatch(ctx, events); err != nil {
			return err
		}
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
