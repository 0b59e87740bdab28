package jobs

import (
	"context"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/geniuslabs/voiceapi/database"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/observability"
)

// Result is the in-memory outcome of processing one recording. The persisted
// recording row is the source of truth; this mirrors it for the caller.
type Result struct {
	Success         bool
	Transcription   string
	Language        string
	DurationSeconds int
	Error           string
}

// Processor runs the per-recording transcription state machine:
// pending|failed -> processing -> completed|failed.
type Processor struct {
	recordings  RecordingStore
	transcriber Transcriber
	log         *logger.Logger
	metrics     *observability.Metrics
}

// NewProcessor creates a Processor.
func NewProcessor(recordings RecordingStore, transcriber Transcriber, log *logger.Logger) *Processor {
	return &Processor{
		recordings:  recordings,
		transcriber: transcriber,
		log:         log.WithComponent("processor"),
	}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (p *Processor) SetMetrics(m *observability.Metrics) { p.metrics = m }

// Process transcribes one recording and persists the outcome. A missing
// recording is the only error returned to the caller; every other failure is
// recorded on the row and reported through Result.
func (p *Processor) Process(ctx context.Context, id uuid.UUID) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanProcessJob)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrRecordingID, id.String()))
	if p.metrics != nil {
		p.metrics.RecordJobStart(ctx)
		defer p.metrics.RecordJobEnd(ctx)
	}

	rec, err := p.recordings.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Completed recordings are immutable: duplicate enqueues short-circuit
	// without touching the provider.
	if rec.Status == database.RecordingCompleted {
		return p.completedResult(rec), nil
	}

	claimed, err := p.recordings.Claim(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Another worker owns this recording. If it already finished, report
		// its result; otherwise report a failure without touching the row.
		fresh, getErr := p.recordings.Get(ctx, id)
		if getErr == nil && fresh.Status == database.RecordingCompleted {
			return p.completedResult(fresh), nil
		}
		return &Result{Success: false, Error: "recording is being processed by another worker"}, nil
	}

	if rec.AudioRef == nil || *rec.AudioRef == "" {
		return p.fail(ctx, id, "recording has no stored audio")
	}

	language := ""
	if rec.Project != nil {
		language = rec.Project.Language
	}

	res, err := p.transcriber.Transcribe(ctx, *rec.AudioRef, language)
	if err != nil {
		p.log.Warn("Transcription failed", map[string]interface{}{
			logger.FieldRecordingID: id.String(),
			"error":                 err.Error(),
		})
		return p.fail(ctx, id, err.Error())
	}

	duration := int(math.Round(res.Duration))
	if err := p.recordings.MarkCompleted(ctx, id, res.Text, res.Language, duration); err != nil {
		// The transcription succeeded; losing the write is degraded but the
		// caller still gets the true outcome.
		p.log.Error("Failed to persist completed transcription", map[string]interface{}{
			logger.FieldRecordingID: id.String(),
			"error":                 err.Error(),
		})
	}

	return &Result{
		Success:         true,
		Transcription:   res.Text,
		Language:        res.Language,
		DurationSeconds: duration,
	}, nil
}

// fail marks the recording failed and returns a failure result. A failure of
// the status write itself is logged, not propagated.
func (p *Processor) fail(ctx context.Context, id uuid.UUID, reason string) (*Result, error) {
	if err := p.recordings.MarkFailed(ctx, id, reason); err != nil {
		p.log.Error("Failed to persist failure status", map[string]interface{}{
			logger.FieldRecordingID: id.String(),
			"error":                 err.Error(),
		})
	}
	return &Result{Success: false, Error: reason}, nil
}

func (p *Processor) completedResult(rec *database.Recording) *Result {
	res := &Result{
		Success:       true,
		Transcription: rec.Transcription,
		Language:      rec.LanguageDetected,
	}
	if rec.DurationSeconds != nil {
		res.DurationSeconds = *rec.DurationSeconds
	}
	return res
}
