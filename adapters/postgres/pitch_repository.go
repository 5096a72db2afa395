package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gopitch/models"
	"gopitch/ports"

	apperrors "gopitch/internal/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PitchRepositoryImpl implements PitchRepository for PostgreSQL
type PitchRepositoryImpl struct {
	db *sqlx.DB
}

// NewPitchRepository creates a new PostgreSQL pitch repository
func NewPitchRepository(db *sqlx.DB) ports.PitchRepository {
	return &PitchRepositoryImpl{db: db}
}

// CreatePitch inserts a new pitch, assigning its ID
func (r *PitchRepositoryImpl) CreatePitch(ctx context.Context, pitch *models.Pitch) error {
	pitch.ID = uuid.New()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO pitches (id, user_id, title, description, transcript, analysis, audio_path, duration_seconds, created_at)
		VALUES (:id, :user_id, :title, :description, :transcript, :analysis, :audio_path, :duration_seconds, NOW())
	`, pitch)
	if err != nil {
		return apperrors.Wrap(err, "failed to create pitch")
	}
	return nil
}

// GetPitch retrieves one pitch owned by the given user. A pitch owned by
// another user is indistinguishable from a missing one.
func (r *PitchRepositoryImpl) GetPitch(ctx context.Context, userID, pitchID uuid.UUID) (*models.Pitch, error) {
	var pitch models.Pitch
	err := r.db.GetContext(ctx, &pitch, `
		SELECT id, user_id, title, description, transcript, analysis, audio_path, duration_seconds, created_at
		FROM pitches
		WHERE id = $1 AND user_id = $2
	`, pitchID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("pitch")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load pitch")
	}
	return &pitch, nil
}

// ListUserPitches returns all pitches for a user, newest first
func (r *PitchRepositoryImpl) ListUserPitches(ctx context.Context, userID uuid.UUID) ([]*models.Pitch, error) {
	var pitches []*models.Pitch
	err := r.db.SelectContext(ctx, &pitches, `
		SELECT id, user_id, title, description, transcript, analysis, audio_path, duration_seconds, created_at
		FROM pitches
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pitches")
	}
	return pitches, nil
}
