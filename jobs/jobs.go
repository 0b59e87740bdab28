// Package jobs contains the transcription job orchestration core: the
// per-recording processor, the batch coordinator, and the background runner
// that drives them.
package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/geniuslabs/voiceapi/database"
	"github.com/geniuslabs/voiceapi/transcription"
)

// RecordingStore is the recording persistence surface the job core needs.
type RecordingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*database.Recording, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, text, language string, durationSeconds int) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	ListByBatchAndStatus(ctx context.Context, batchID uuid.UUID, status database.RecordingStatus) ([]database.Recording, error)
	SumCompletedDuration(ctx context.Context, batchID uuid.UUID) (int, error)
}

// BatchStore is the batch persistence surface the job core needs.
type BatchStore interface {
	Get(ctx context.Context, id uuid.UUID) (*database.Batch, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, completed, failed int) error
	Finalize(ctx context.Context, id uuid.UUID, status database.BatchStatus, completed, failed int, costUSD float64) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// Transcriber converts stored audio into text. Satisfied by transcription.Client.
type Transcriber interface {
	Transcribe(ctx context.Context, ref, language string) (*transcription.Result, error)
}
