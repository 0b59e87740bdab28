package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/geniuslabs/voiceapi/errors"
)

// ProjectStore provides persistence operations for projects.
type ProjectStore struct {
	db *DB
}

// NewProjectStore creates a ProjectStore over db.
func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Get loads a project by id.
func (s *ProjectStore) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("project", id.String())
	}
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &p, nil
}

// GetByPublicKey loads the project owning the given widget public key.
func (s *ProjectStore) GetByPublicKey(ctx context.Context, publicKey string) (*Project, error) {
	var p Project
	err := s.db.WithContext(ctx).First(&p, "public_key = ?", publicKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("project", publicKey)
	}
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return &p, nil
}

// Create inserts a new project.
func (s *ProjectStore) Create(ctx context.Context, p *Project) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}
