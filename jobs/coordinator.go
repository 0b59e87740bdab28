package jobs

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/geniuslabs/voiceapi/database"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/observability"
	"github.com/geniuslabs/voiceapi/resilience"
	"github.com/geniuslabs/voiceapi/transcription"
)

// processor is the per-recording worker the coordinator drives.
type processor interface {
	Process(ctx context.Context, id uuid.UUID) (*Result, error)
}

// Coordinator drives all recordings of a batch through the shared concurrency
// limiter and finalizes the batch with progress counters, cost, and a terminal
// status. Only one coordinator run may be active per batch.
type Coordinator struct {
	recordings    RecordingStore
	batches       BatchStore
	processor     processor
	limiter       *resilience.Limiter
	ratePerMinute float64
	log           *logger.Logger
	metrics       *observability.Metrics
}

// NewCoordinator creates a Coordinator. The limiter must be the same instance
// used by the single-job path so the provider concurrency budget is shared.
func NewCoordinator(recordings RecordingStore, batches BatchStore, proc processor, limiter *resilience.Limiter, ratePerMinute float64, log *logger.Logger) *Coordinator {
	if ratePerMinute <= 0 {
		ratePerMinute = transcription.DefaultRatePerMinute
	}
	return &Coordinator{
		recordings:    recordings,
		batches:       batches,
		processor:     proc,
		limiter:       limiter,
		ratePerMinute: ratePerMinute,
		log:           log.WithComponent("coordinator"),
	}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (c *Coordinator) SetMetrics(m *observability.Metrics) { c.metrics = m }

// RunBatch processes every recording of the batch still in processing status
// and writes the batch's terminal state. An orchestration failure (as opposed
// to an individual recording failure) marks the batch failed best-effort.
func (c *Coordinator) RunBatch(ctx context.Context, batchID uuid.UUID) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanRunBatch)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrBatchID, batchID.String()))

	if err := c.run(ctx, batchID); err != nil {
		observability.SetSpanError(ctx, err)
		c.log.Error("Batch orchestration failed", map[string]interface{}{
			logger.FieldBatchID: batchID.String(),
			"error":             err.Error(),
		})
		if mErr := c.batches.MarkFailed(ctx, batchID); mErr != nil {
			c.log.Error("Failed to mark batch failed", map[string]interface{}{
				logger.FieldBatchID: batchID.String(),
				"error":             mErr.Error(),
			})
		}
		return err
	}
	return nil
}

func (c *Coordinator) run(ctx context.Context, batchID uuid.UUID) error {
	batch, err := c.batches.Get(ctx, batchID)
	if err != nil {
		return err
	}

	recs, err := c.recordings.ListByBatchAndStatus(ctx, batchID, database.RecordingProcessing)
	if err != nil {
		return err
	}

	completed := batch.CompletedCount
	failed := batch.FailedCount

	if len(recs) == 0 {
		cost, err := c.batchCost(ctx, batchID)
		if err != nil {
			return err
		}
		return c.finalize(ctx, batchID, database.BatchCompleted, completed, failed, cost)
	}

	c.log.Info("Processing batch", map[string]interface{}{
		logger.FieldBatchID: batchID.String(),
		"recordings":        len(recs),
	})

	for _, rec := range recs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		recID := rec.ID
		res, err := resilience.RunWith(ctx, c.limiter, func() (*Result, error) {
			return c.processor.Process(ctx, recID)
		})
		if err != nil || !res.Success {
			failed++
		} else {
			completed++
		}

		// Persist counters after every recording so observers see progress.
		if err := c.batches.UpdateProgress(ctx, batchID, completed, failed); err != nil {
			return err
		}
	}

	cost, err := c.batchCost(ctx, batchID)
	if err != nil {
		return err
	}

	status := terminalStatus(completed, failed)
	c.log.Info("Batch finished", map[string]interface{}{
		logger.FieldBatchID: batchID.String(),
		"status":            string(status),
		"completed":         completed,
		"failed":            failed,
		"cost_usd":          cost,
	})
	return c.finalize(ctx, batchID, status, completed, failed, cost)
}

// finalize writes the batch's terminal state and records it.
func (c *Coordinator) finalize(ctx context.Context, batchID uuid.UUID, status database.BatchStatus, completed, failed int, cost float64) error {
	if err := c.batches.Finalize(ctx, batchID, status, completed, failed, cost); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordBatchFinalized(ctx, string(status), cost)
	}
	return nil
}

func (c *Coordinator) batchCost(ctx context.Context, batchID uuid.UUID) (float64, error) {
	totalSeconds, err := c.recordings.SumCompletedDuration(ctx, batchID)
	if err != nil {
		return 0, err
	}
	return transcription.Cost(totalSeconds, c.ratePerMinute), nil
}

// terminalStatus derives the batch's final status from its counters.
func terminalStatus(completed, failed int) database.BatchStatus {
	switch {
	case failed > 0 && completed > 0:
		return database.BatchPartial
	case failed > 0:
		return database.BatchFailed
	default:
		return database.BatchCompleted
	}
}
