package models

import "time"

// EmotionPoint is one entry in the rolling emotion trend
type EmotionPoint struct {
	Emotion   string    `json:"emotion"`
	Timestamp time.Time `json:"timestamp"`
}

// LiveMetrics is the per-session metrics snapshot. It is replaced
// wholesale on every update (recomputed from the accumulated window),
// never patched field by field.
type LiveMetrics struct {
	VolumeLevel     float64        `json:"volume_level"`
	SpeakingPace    float64        `json:"speaking_pace"` // words per minute
	ConfidenceTrend []float64      `json:"confidence_trend"`
	EmotionTrend    []EmotionPoint `json:"emotion_trend"`
	PitchVariation  float64        `json:"pitch_variation"`
	SpeakingTime    float64        `json:"speaking_time"`
	PauseCount      int            `json:"pause_count"`
	IsSpeaking      bool           `json:"is_speaking"`
	LastUpdate      time.Time      `json:"last_update"`
}

// EmotionSummary aggregates the emotion trend at session end
type EmotionSummary struct {
	DominantEmotion     string         `json:"dominant_emotion"`
	EmotionDistribution map[string]int `json:"emotion_distribution,omitempty"`
	EmotionChanges      int            `json:"emotion_changes"`
	Stability           string         `json:"stability"` // stable | variable
}

// SessionSummary is emitted with the session_ended event
type SessionSummary struct {
	SessionID       string         `json:"session_id"`
	TotalDuration   float64        `json:"total_duration"`
	SpeakingTime    float64        `json:"speaking_time"`
	SpeakingRatio   float64        `json:"speaking_ratio"`
	TotalChunks     int            `json:"total_chunks"`
	FinalTranscript string         `json:"final_transcript"`
	ConfidenceTrend []float64      `json:"confidence_trend"`
	Emotions        EmotionSummary `json:"emotion_summary"`
	FinalMetrics    LiveMetrics    `json:"final_metrics"`
}

// InvestorResponse is the generated feedback for a pitch
type InvestorResponse struct {
	Persona  string   `json:"persona"`
	Message  string   `json:"message"`
	Concerns []string `json:"concerns,omitempty"`
	Interest string   `json:"interest"` // low | medium | high
}
