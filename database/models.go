package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordingStatus is the lifecycle state of a single recording.
type RecordingStatus string

const (
	RecordingPending    RecordingStatus = "pending"
	RecordingProcessing RecordingStatus = "processing"
	RecordingCompleted  RecordingStatus = "completed"
	RecordingFailed     RecordingStatus = "failed"
)

// BatchStatus is the lifecycle state of a batch of recordings.
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchPartial    BatchStatus = "partial"
	BatchFailed     BatchStatus = "failed"
)

// BaseModel contains common fields for all database models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate generates a UUID if not already set.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Project is a customer survey project embedding the voice widget.
type Project struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	Name      string
	PublicKey string `gorm:"uniqueIndex"`
	Language  string `gorm:"default:es"`
	Plan      string `gorm:"default:free"`
}

// Batch groups recordings submitted together for transcription.
type Batch struct {
	BaseModel
	ProjectID      uuid.UUID   `gorm:"type:uuid;index"`
	Status         BatchStatus `gorm:"index"`
	TotalCount     int
	CompletedCount int
	FailedCount    int
	ActualCostUSD  *float64
	CompletedAt    *time.Time
}

// Recording is one audio answer captured by the widget.
type Recording struct {
	BaseModel
	ProjectID        uuid.UUID `gorm:"type:uuid;index"`
	Project          *Project  `gorm:"foreignKey:ProjectID"`
	BatchID          *uuid.UUID
	SessionID        string          `gorm:"index"`
	QuestionID       string
	Status           RecordingStatus `gorm:"index"`
	AudioRef         *string
	AudioSizeBytes   int64
	DurationSeconds  *int
	Transcription    string `gorm:"type:text"`
	LanguageDetected string
	ErrorMessage     *string
	TranscribedAt    *time.Time
	ClaimedAt        *time.Time
	Metadata         string `gorm:"type:text"`
}
