package analysis

import (
	"context"

	"gopitch/internal"
	"gopitch/models"
	"gopitch/ports"
)

// Analyzer composes the independent scoring adapters into one analysis.
// Each adapter is a pure function of its input; the analyzer only adds
// the fixed linear blend and the unified degradation policy: any adapter
// failure yields a neutral placeholder component, logged, never fatal.
type Analyzer struct {
	emotions ports.EmotionClassifier
	logger   *internal.Logger
}

// NewAnalyzer creates an analyzer over the given emotion classifier
func NewAnalyzer(emotions ports.EmotionClassifier, logger *internal.Logger) *Analyzer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Analyzer{emotions: emotions, logger: logger}
}

// Analyze scores a transcript plus its audio window. samples may be nil
// when only text is available (the audio component then scores zero
// weight contribution from defaults).
func (a *Analyzer) Analyze(ctx context.Context, transcript string, samples []float64, sampleRate int) *models.PitchAnalysis {
	result := &models.PitchAnalysis{Transcript: transcript}

	result.Audio = ExtractAudioFeatures(samples, sampleRate)
	result.Linguistic = ExtractLinguisticScores(transcript, result.Audio.Duration)

	emotion := models.NeutralEmotion()
	if a.emotions != nil && transcript != "" {
		classified, err := a.emotions.Classify(ctx, transcript)
		if err != nil {
			a.logger.Warn("emotion classification degraded: %v", err)
			result.Degraded = true
			result.DegradedReason = "emotion classifier unavailable"
		} else {
			emotion = classified
		}
	}
	result.Emotion = emotion

	result.ConfidenceScore = CompositeScore(result.Linguistic, result.Emotion, result.Audio)
	result.Grade = Grade(result.ConfidenceScore)
	return result
}
