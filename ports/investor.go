package ports

import (
	"context"

	"gopitch/models"
)

// InvestorRequest carries everything the generator needs: the accumulated
// transcript, the latest metrics snapshot, and an optional persona
// override. An empty transcript selects the encouraging default persona.
type InvestorRequest struct {
	Transcript string
	Metrics    models.LiveMetrics
	Analysis   *models.PitchAnalysis
	Persona    string
}

// InvestorGenerator produces synthetic investor feedback for a pitch
type InvestorGenerator interface {
	Respond(ctx context.Context, req InvestorRequest) (models.InvestorResponse, error)
}
