package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/geniuslabs/voiceapi/errors"
)

// BatchStore provides persistence operations for batches.
type BatchStore struct {
	db *DB
}

// NewBatchStore creates a BatchStore over db.
func NewBatchStore(db *DB) *BatchStore {
	return &BatchStore{db: db}
}

// Get loads a batch by id.
func (s *BatchStore) Get(ctx context.Context, id uuid.UUID) (*Batch, error) {
	var b Batch
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("batch", id.String())
	}
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &b, nil
}

// Create inserts a new batch.
func (s *BatchStore) Create(ctx context.Context, b *Batch) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// UpdateProgress persists the running completed/failed counters.
func (s *BatchStore) UpdateProgress(ctx context.Context, id uuid.UUID, completed, failed int) error {
	res := s.db.WithContext(ctx).
		Model(&Batch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completed_count": completed,
			"failed_count":    failed,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return apperrors.DatabaseError(res.Error)
	}
	return nil
}

// Finalize writes the terminal status, final counters, cost, and completion time.
func (s *BatchStore) Finalize(ctx context.Context, id uuid.UUID, status BatchStatus, completed, failed int, costUSD float64) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&Batch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"completed_count": completed,
			"failed_count":    failed,
			"actual_cost_usd": costUSD,
			"completed_at":    now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return apperrors.DatabaseError(res.Error)
	}
	return nil
}

// MarkFailed moves the batch to failed with a completion time.
func (s *BatchStore) MarkFailed(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&Batch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       BatchFailed,
			"completed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return apperrors.DatabaseError(res.Error)
	}
	return nil
}
