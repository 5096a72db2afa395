package ports

import (
	"context"

	"gopitch/models"
)

// EmotionClassifier wraps an external emotion model. Given transcript
// text it returns a label distribution and a derived sentiment score.
type EmotionClassifier interface {
	Classify(ctx context.Context, text string) (models.EmotionResult, error)
}
