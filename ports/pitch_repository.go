package ports

import (
	"context"

	"gopitch/models"

	"github.com/google/uuid"
)

// PitchRepository defines the interface for pitch data operations.
// Pitches are append-only; there are no update or delete operations.
type PitchRepository interface {
	// CreatePitch inserts a new pitch, assigning its ID
	CreatePitch(ctx context.Context, pitch *models.Pitch) error

	// GetPitch retrieves one pitch owned by the given user
	GetPitch(ctx context.Context, userID, pitchID uuid.UUID) (*models.Pitch, error)

	// ListUserPitches returns all pitches for a user, newest first
	ListUserPitches(ctx context.Context, userID uuid.UUID) ([]*models.Pitch, error)
}
