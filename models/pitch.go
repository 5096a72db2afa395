package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Pitch is one recorded pitch attempt. Rows are append-only: created on
// upload with the analysis populated synchronously, never mutated after.
type Pitch struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	Title           string         `json:"title" db:"title"`
	Description     string         `json:"description" db:"description"`
	Transcript      string         `json:"transcript" db:"transcript"`
	Analysis        types.JSONText `json:"analysis" db:"analysis"`
	AudioPath       string         `json:"-" db:"audio_path"`
	DurationSeconds float64        `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// SetAnalysis serializes an analysis result onto the pitch row
func (p *Pitch) SetAnalysis(a *PitchAnalysis) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	p.Analysis = types.JSONText(raw)
	return nil
}

// GetAnalysis deserializes the stored analysis, nil when absent
func (p *Pitch) GetAnalysis() (*PitchAnalysis, error) {
	if len(p.Analysis) == 0 {
		return nil, nil
	}
	var a PitchAnalysis
	if err := json.Unmarshal(p.Analysis, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
