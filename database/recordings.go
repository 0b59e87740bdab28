package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/geniuslabs/voiceapi/errors"
)

// RecordingStore provides persistence operations for recordings.
type RecordingStore struct {
	db *DB
}

// NewRecordingStore creates a RecordingStore over db.
func NewRecordingStore(db *DB) *RecordingStore {
	return &RecordingStore{db: db}
}

// Get loads a recording with its project preloaded.
func (s *RecordingStore) Get(ctx context.Context, id uuid.UUID) (*Recording, error) {
	var rec Recording
	err := s.db.WithContext(ctx).Preload("Project").First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("recording", id.String())
	}
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &rec, nil
}

// Create inserts a new recording.
func (s *RecordingStore) Create(ctx context.Context, rec *Recording) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// Claim atomically takes ownership of a recording for processing. Pending
// and failed rows are always claimable; rows resting in processing (batch
// ingress creates them there) are claimable only while unstamped. The single
// conditional UPDATE guarantees exactly one of two racing claims wins.
// Returns false without error when another worker got there first.
func (s *RecordingStore) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&Recording{}).
		Where("id = ? AND (status IN ? OR (status = ? AND claimed_at IS NULL))",
			id, []RecordingStatus{RecordingPending, RecordingFailed}, RecordingProcessing).
		Updates(map[string]interface{}{
			"status":     RecordingProcessing,
			"claimed_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, apperrors.DatabaseError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkCompleted records a successful transcription result.
func (s *RecordingStore) MarkCompleted(ctx context.Context, id uuid.UUID, text, language string, durationSeconds int) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&Recording{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            RecordingCompleted,
			"transcription":     text,
			"language_detected": language,
			"duration_seconds":  durationSeconds,
			"error_message":     nil,
			"claimed_at":        nil,
			"transcribed_at":    now,
			"updated_at":        now,
		})
	if res.Error != nil {
		return apperrors.DatabaseError(res.Error)
	}
	return nil
}

// MarkFailed records a permanent transcription failure.
func (s *RecordingStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	res := s.db.WithContext(ctx).
		Model(&Recording{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        RecordingFailed,
			"error_message": errMsg,
			"claimed_at":    nil,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return apperrors.DatabaseError(res.Error)
	}
	return nil
}

// ListByBatchAndStatus returns the recordings of a batch in the given status,
// oldest first.
func (s *RecordingStore) ListByBatchAndStatus(ctx context.Context, batchID uuid.UUID, status RecordingStatus) ([]Recording, error) {
	var recs []Recording
	err := s.db.WithContext(ctx).
		Where("batch_id = ? AND status = ?", batchID, status).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return recs, nil
}

// RecordingCounts summarizes a project's recordings by status.
type RecordingCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

// CountByProject tallies a project's recordings per status.
func (s *RecordingStore) CountByProject(ctx context.Context, projectID uuid.UUID) (*RecordingCounts, error) {
	var rows []struct {
		Status RecordingStatus
		N      int64
	}
	err := s.db.WithContext(ctx).
		Model(&Recording{}).
		Where("project_id = ?", projectID).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	counts := &RecordingCounts{}
	for _, row := range rows {
		counts.Total += row.N
		switch row.Status {
		case RecordingPending:
			counts.Pending = row.N
		case RecordingProcessing:
			counts.Processing = row.N
		case RecordingCompleted:
			counts.Completed = row.N
		case RecordingFailed:
			counts.Failed = row.N
		}
	}
	return counts, nil
}

// SumCompletedDuration returns the total duration in seconds of the batch's
// completed recordings.
func (s *RecordingStore) SumCompletedDuration(ctx context.Context, batchID uuid.UUID) (int, error) {
	var total *int
	err := s.db.WithContext(ctx).
		Model(&Recording{}).
		Where("batch_id = ? AND status = ?", batchID, RecordingCompleted).
		Select("SUM(duration_seconds)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
