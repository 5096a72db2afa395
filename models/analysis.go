package models

// EmotionResult is the output of the emotion classifier adapter
type EmotionResult struct {
	Dominant  string             `json:"dominant"`
	Scores    map[string]float64 `json:"scores,omitempty"`
	Sentiment float64            `json:"sentiment"` // [-1, 1]
}

// NeutralEmotion is the placeholder used when classification degrades
func NeutralEmotion() EmotionResult {
	return EmotionResult{Dominant: "neutral", Sentiment: 0}
}

// AudioFeatures are signal-level measurements over one audio window
type AudioFeatures struct {
	VolumeLevel      float64 `json:"volume_level"`      // RMS scaled to [0, 100]
	PitchVariation   float64 `json:"pitch_variation"`   // stddev of frame zero-crossing rate
	SpectralCentroid float64 `json:"spectral_centroid"` // Hz
	SilenceRatio     float64 `json:"silence_ratio"`     // [0, 1]
	SpeakingTime     float64 `json:"speaking_time"`     // seconds with speech energy
	PauseCount       int     `json:"pause_count"`
	Energy           float64 `json:"energy"` // mean squared amplitude
	Duration         float64 `json:"duration"`
}

// LinguisticScores are heuristics computed from the transcript text
type LinguisticScores struct {
	WordCount      int     `json:"word_count"`
	FillerRatio    float64 `json:"filler_ratio"`
	HedgeRatio     float64 `json:"hedge_ratio"`
	WordsPerMinute float64 `json:"words_per_minute"`
	Score          float64 `json:"score"` // [0, 100]
}

// PitchAnalysis is the composite result stored on a pitch and streamed
// to live sessions. The confidence score is a fixed linear blend of the
// component scores; same inputs always produce the same analysis.
type PitchAnalysis struct {
	Transcript      string           `json:"transcript"`
	ConfidenceScore float64          `json:"confidence_score"` // [0, 100]
	Grade           string           `json:"grade"`            // A..F
	Emotion         EmotionResult    `json:"emotion"`
	Audio           AudioFeatures    `json:"audio"`
	Linguistic      LinguisticScores `json:"linguistic"`
	Degraded        bool             `json:"degraded,omitempty"`
	DegradedReason  string           `json:"degraded_reason,omitempty"`
}

// PlaceholderAnalysis is the neutral fallback used when an adapter fails.
// Both the upload path and the streaming path degrade to this.
func PlaceholderAnalysis(reason string) *PitchAnalysis {
	return &PitchAnalysis{
		ConfidenceScore: 0,
		Grade:           "F",
		Emotion:         NeutralEmotion(),
		Degraded:        true,
		DegradedReason:  reason,
	}
}
