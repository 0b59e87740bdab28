// Package ingest implements the synchronous submission path: one inline
// transcription attempt, with durable audio storage as the safety net when
// the provider is unavailable.
package ingest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/geniuslabs/voiceapi/database"
	apperrors "github.com/geniuslabs/voiceapi/errors"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/observability"
	"github.com/geniuslabs/voiceapi/plan"
	"github.com/geniuslabs/voiceapi/storage"
	"github.com/geniuslabs/voiceapi/transcription"
)

// RecordingCreator inserts new recordings. Satisfied by database.RecordingStore.
type RecordingCreator interface {
	Create(ctx context.Context, rec *database.Recording) error
}

// BufferTranscriber transcribes in-memory audio. Satisfied by transcription.Client.
type BufferTranscriber interface {
	TranscribeBuffer(ctx context.Context, audio []byte, mimeType, language string) (*transcription.Result, error)
}

// SubmitRequest is one live widget submission.
type SubmitRequest struct {
	Project         *database.Project
	Audio           []byte
	MimeType        string
	SessionID       string
	QuestionID      string
	DurationSeconds int
	// Language optionally overrides the project's transcription language.
	Language string
	Metadata string
}

// SubmitResult reports the outcome of a submission. Status is completed or
// failed; a failed submission is stored, not lost.
type SubmitResult struct {
	RecordingID     uuid.UUID
	Status          database.RecordingStatus
	Transcription   string
	Language        string
	DurationSeconds int
	Error           string
}

// Service is the immediate submission path.
type Service struct {
	recordings  RecordingCreator
	audio       *storage.AudioStore
	transcriber BufferTranscriber
	log         *logger.Logger
	metrics     *observability.Metrics
}

// NewService creates the submission service.
func NewService(recordings RecordingCreator, audio *storage.AudioStore, transcriber BufferTranscriber, log *logger.Logger) *Service {
	return &Service{
		recordings:  recordings,
		audio:       audio,
		transcriber: transcriber,
		log:         log.WithComponent("ingest"),
	}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (s *Service) SetMetrics(m *observability.Metrics) { s.metrics = m }

// Submit validates the clip against the project's plan and attempts one
// synchronous transcription. On provider failure the raw audio is persisted
// and a failed recording is inserted referencing it, so the submission can be
// reprocessed later.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit)
	defer span.End()

	if req.Project == nil {
		return nil, apperrors.Validation("project is required")
	}
	span.SetAttributes(attribute.String(observability.AttrProjectID, req.Project.ID.String()))
	if len(req.Audio) == 0 {
		return nil, apperrors.Validation("audio is required")
	}

	p := plan.Get(req.Project.Plan)
	if !p.AllowsDuration(req.DurationSeconds) {
		return nil, apperrors.Validation(fmt.Sprintf(
			"recording duration %ds exceeds the %s plan limit of %ds",
			req.DurationSeconds, p.Name, p.MaxDurationSeconds))
	}

	language := req.Project.Language
	if req.Language != "" {
		language = req.Language
	}
	if !p.AllowsLanguage(language) {
		return nil, apperrors.Validation(fmt.Sprintf(
			"language %q is not available on the %s plan", language, p.Name))
	}

	res, err := s.transcriber.TranscribeBuffer(ctx, req.Audio, req.MimeType, language)
	if err != nil {
		return s.storeFallback(ctx, req, err)
	}

	now := time.Now().UTC()
	duration := int(math.Round(res.Duration))
	if duration == 0 {
		duration = req.DurationSeconds
	}

	// Success path keeps the text only; the audio is discarded.
	rec := &database.Recording{
		ProjectID:        req.Project.ID,
		SessionID:        req.SessionID,
		QuestionID:       req.QuestionID,
		Status:           database.RecordingCompleted,
		AudioRef:         nil,
		AudioSizeBytes:   int64(len(req.Audio)),
		DurationSeconds:  &duration,
		Transcription:    res.Text,
		LanguageDetected: res.Language,
		TranscribedAt:    &now,
		Metadata:         req.Metadata,
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, err
	}

	return &SubmitResult{
		RecordingID:     rec.ID,
		Status:          database.RecordingCompleted,
		Transcription:   res.Text,
		Language:        res.Language,
		DurationSeconds: duration,
	}, nil
}

// storeFallback persists the raw audio and a failed recording referencing it.
// The provider error becomes part of the record, not an HTTP failure.
func (s *Service) storeFallback(ctx context.Context, req SubmitRequest, cause error) (*SubmitResult, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStoreFallback)
	defer span.End()

	s.log.Warn("Inline transcription failed, storing audio for reprocessing", map[string]interface{}{
		logger.FieldProjectID: req.Project.ID.String(),
		"error":               cause.Error(),
	})

	stored, err := s.audio.Store(ctx, req.Audio, req.Project.ID.String(), req.SessionID, req.MimeType)
	if err != nil {
		// Both the provider and storage failed; nothing durable remains.
		observability.SetSpanError(ctx, err)
		return nil, apperrors.StorageError("store fallback audio", err)
	}
	if s.metrics != nil {
		s.metrics.RecordFallbackStored(ctx, stored.Size)
	}

	errMsg := cause.Error()
	duration := req.DurationSeconds
	rec := &database.Recording{
		ProjectID:       req.Project.ID,
		SessionID:       req.SessionID,
		QuestionID:      req.QuestionID,
		Status:          database.RecordingFailed,
		AudioRef:        &stored.Ref,
		AudioSizeBytes:  stored.Size,
		DurationSeconds: &duration,
		ErrorMessage:    &errMsg,
		Metadata:        req.Metadata,
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, err
	}

	return &SubmitResult{
		RecordingID: rec.ID,
		Status:      database.RecordingFailed,
		Error:       errMsg,
	}, nil
}
