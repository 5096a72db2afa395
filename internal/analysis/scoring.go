package analysis

import "gopitch/models"

// Fixed linear weights for the composite confidence score. These mirror
// the hand-tuned formulas the product shipped with; changing them changes
// every stored analysis, so treat them as part of the data contract.
const (
	weightLinguistic = 0.35
	weightEmotion    = 0.25
	weightAudio      = 0.25
	weightPace       = 0.15
)

// CompositeScore blends the component scores into [0, 100]
func CompositeScore(linguistic models.LinguisticScores, emotion models.EmotionResult, audio models.AudioFeatures) float64 {
	score := weightLinguistic*linguistic.Score +
		weightEmotion*emotionScore(emotion) +
		weightAudio*audioScore(audio) +
		weightPace*paceScore(linguistic.WordsPerMinute)
	return round2(clamp(score, 0, 100))
}

// Grade maps a confidence score to a letter grade
func Grade(score float64) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

// emotionScore rewards confident, positive delivery. Sentiment spans
// [-1, 1]; the dominant label adds a fixed bonus or penalty.
func emotionScore(e models.EmotionResult) float64 {
	score := 50 + e.Sentiment*40
	switch e.Dominant {
	case "joy", "confidence":
		score += 10
	case "fear", "sadness":
		score -= 15
	case "anger", "disgust":
		score -= 10
	}
	return clamp(score, 0, 100)
}

// paceScore peaks in the conversational band and falls off linearly.
// 110-160 wpm scores 100; zero pace (no transcript yet) scores 0.
func paceScore(wpm float64) float64 {
	switch {
	case wpm <= 0:
		return 0
	case wpm < 110:
		return clamp(100-(110-wpm)*1.2, 0, 100)
	case wpm <= 160:
		return 100
	default:
		return clamp(100-(wpm-160)*1.5, 0, 100)
	}
}

// audioScore rewards audible, varied delivery and penalizes dead air
func audioScore(a models.AudioFeatures) float64 {
	score := 100.0

	// Too quiet or clipping both read poorly
	switch {
	case a.VolumeLevel < 5:
		score -= 40
	case a.VolumeLevel < 15:
		score -= 20
	case a.VolumeLevel > 90:
		score -= 10
	}

	score -= clamp(a.SilenceRatio*60, 0, 35)

	// Monotone delivery: very low pitch variation
	if a.PitchVariation < 0.01 {
		score -= 15
	}

	return clamp(score, 0, 100)
}
