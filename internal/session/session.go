package session

import (
	"time"

	"gopitch/models"

	"github.com/google/uuid"
)

// EmitFunc pushes one server event to the session's client. The
// connection handler supplies it; the manager never touches the socket.
type EmitFunc func(event string, data interface{})

// Event names on the server→client channel
const (
	EventConnected        = "connected"
	EventLiveMetrics      = "live_metrics"
	EventAnalysisUpdate   = "analysis_update"
	EventInvestorResponse = "investor_response"
	EventSessionEnded     = "session_ended"
	EventError            = "error"
)

// Session is the in-memory record for one live pitch attempt. It is
// owned by exactly one connection handler for its whole lifetime; the
// manager's registry lock guards only open/close, never chunk handling.
type Session struct {
	ID        string
	UserID    uuid.UUID
	StartedAt time.Time

	// window is the rolling audio buffer the metrics snapshot is
	// recomputed from. Bounded: trimmed to 70% of the cap on overflow.
	window []float64

	// pending accumulates samples not yet transcribed; cleared after
	// each transcription attempt, successful or not.
	pending []float64

	transcript   string
	lastAnalysis *models.PitchAnalysis

	// Whole-session counters. The snapshot is rebuilt from these plus
	// the window on every update; it is never patched in place.
	speakingTime    float64
	pauseCount      int
	chunkCount      int
	confidenceTrend []float64
	emotionTrend    []models.EmotionPoint
	speakingPace    float64

	closed bool
}

// Transcript returns the accumulated transcript
func (s *Session) Transcript() string {
	return s.transcript
}

// Closed reports whether the session has ended
func (s *Session) Closed() bool {
	return s.closed
}

// ChunkCount returns the number of chunks received
func (s *Session) ChunkCount() int {
	return s.chunkCount
}

// snapshot rebuilds the metrics snapshot wholesale from session state.
// isSpeaking and volume reflect the rolling window's tail.
func (s *Session) snapshot(volumeLevel, pitchVariation float64, isSpeaking bool) models.LiveMetrics {
	trend := make([]float64, len(s.confidenceTrend))
	copy(trend, s.confidenceTrend)
	emotions := make([]models.EmotionPoint, len(s.emotionTrend))
	copy(emotions, s.emotionTrend)

	return models.LiveMetrics{
		VolumeLevel:     volumeLevel,
		SpeakingPace:    s.speakingPace,
		ConfidenceTrend: trend,
		EmotionTrend:    emotions,
		PitchVariation:  pitchVariation,
		SpeakingTime:    s.speakingTime,
		PauseCount:      s.pauseCount,
		IsSpeaking:      isSpeaking,
		LastUpdate:      time.Now(),
	}
}

// summarizeEmotions aggregates the emotion trend at session end
func (s *Session) summarizeEmotions() models.EmotionSummary {
	summary := models.EmotionSummary{DominantEmotion: "neutral", Stability: "stable"}
	if len(s.emotionTrend) == 0 {
		return summary
	}

	counts := make(map[string]int)
	changes := 0
	for i, point := range s.emotionTrend {
		counts[point.Emotion]++
		if i > 0 && point.Emotion != s.emotionTrend[i-1].Emotion {
			changes++
		}
	}

	best, bestCount := "neutral", 0
	for emotion, n := range counts {
		if n > bestCount {
			best, bestCount = emotion, n
		}
	}

	summary.DominantEmotion = best
	summary.EmotionDistribution = counts
	summary.EmotionChanges = changes
	if changes >= 3 {
		summary.Stability = "variable"
	}
	return summary
}
