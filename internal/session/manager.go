package session

import (
	"context"
	"sync"
	"time"

	"gopitch/internal"
	"gopitch/internal/analysis"
	"gopitch/internal/config"
	"gopitch/internal/errors"
	"gopitch/models"
	"gopitch/ports"

	"github.com/google/uuid"
)

// Manager owns the registry of live sessions. One session maps to one
// WebSocket connection; chunks for a session are processed in arrival
// order because the owning handler calls SubmitChunk serially. Slow
// inference is bounded inside the transcriber, so a stalled model server
// throttles transcription without stalling other sessions' accept loops.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	transcriber ports.Transcriber
	analyzer    *analysis.Analyzer
	investor    ports.InvestorGenerator
	cfg         config.SessionConfig
	logger      *internal.Logger
}

// NewManager creates a session manager
func NewManager(transcriber ports.Transcriber, analyzer *analysis.Analyzer, investor ports.InvestorGenerator, cfg config.SessionConfig, logger *internal.Logger) *Manager {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.MaxBufferSeconds <= 0 {
		cfg.MaxBufferSeconds = 30
	}
	if cfg.MinSpeechSeconds <= 0 {
		cfg.MinSpeechSeconds = 3
	}
	if cfg.SilenceThreshold <= 0 {
		cfg.SilenceThreshold = analysis.SpeechEnergy
	}
	if cfg.TrendWindowPoints <= 0 {
		cfg.TrendWindowPoints = 10
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		transcriber: transcriber,
		analyzer:    analyzer,
		investor:    investor,
		cfg:         cfg,
		logger:      logger,
	}
}

// Open allocates a session for the authenticated user. An empty id gets
// a generated one; an id that is already live is rejected, never reused.
func (m *Manager) Open(userID uuid.UUID, sessionID string, emit EmitFunc) (*Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	m.mu.Lock()
	if _, exists := m.sessions[sessionID]; exists {
		m.mu.Unlock()
		return nil, errors.DuplicateSession(sessionID)
	}
	s := &Session{
		ID:        sessionID,
		UserID:    userID,
		StartedAt: time.Now(),
	}
	m.sessions[sessionID] = s
	m.mu.Unlock()

	m.logger.Info("session %s opened for user %s", sessionID, userID)
	if emit != nil {
		emit(EventConnected, map[string]interface{}{
			"session_id": s.ID,
			"status":     "started",
			"metrics":    s.snapshot(0, 0, false),
		})
	}
	return s, nil
}

// ActiveCount returns the number of live sessions
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SubmitChunk ingests one audio chunk (16-bit little-endian PCM). It
// always updates and emits the metrics snapshot; when enough buffered
// speech has accumulated it transcribes and analyzes the pending window
// and emits the incremental result. Adapter failures degrade to the
// placeholder policy: logged, surfaced as an error event, session stays
// active.
func (m *Manager) SubmitChunk(ctx context.Context, s *Session, chunk []byte, emit EmitFunc) {
	if s == nil || s.closed {
		return
	}

	samples := analysis.DecodePCM16(chunk)
	if len(samples) == 0 {
		return
	}

	s.chunkCount++
	s.window = append(s.window, samples...)
	s.pending = append(s.pending, samples...)
	m.trimBuffers(s)

	chunkEnergy := analysis.Energy(samples)
	isSpeaking := chunkEnergy > m.cfg.SilenceThreshold
	if isSpeaking {
		s.speakingTime += float64(len(samples)) / float64(m.cfg.SampleRate)
	}

	windowFeatures := analysis.ExtractAudioFeatures(s.window, m.cfg.SampleRate)
	s.pauseCount = windowFeatures.PauseCount

	metrics := s.snapshot(windowFeatures.VolumeLevel, windowFeatures.PitchVariation, isSpeaking)
	if emit != nil {
		emit(EventLiveMetrics, map[string]interface{}{
			"session_id": s.ID,
			"metrics":    metrics,
			"timestamp":  time.Now().UTC(),
		})
	}

	if m.shouldTranscribe(s) {
		m.processPending(ctx, s, emit)
	}
}

// shouldTranscribe gates model invocation: enough pending audio and the
// recent window actually contains speech energy
func (m *Manager) shouldTranscribe(s *Session) bool {
	pendingSeconds := float64(len(s.pending)) / float64(m.cfg.SampleRate)
	if pendingSeconds < m.cfg.MinSpeechSeconds {
		return false
	}

	recent := s.pending
	twoSeconds := 2 * m.cfg.SampleRate
	if len(recent) > twoSeconds {
		recent = recent[len(recent)-twoSeconds:]
	}
	return analysis.Energy(recent) > m.cfg.SilenceThreshold
}

// processPending transcribes and analyzes the pending window. The window
// is consumed regardless of outcome so one bad stretch of audio cannot
// wedge the session into reprocessing it forever.
func (m *Manager) processPending(ctx context.Context, s *Session, emit EmitFunc) {
	pending := s.pending
	s.pending = nil

	result, err := m.transcriber.TranscribePCM(ctx, pending, m.cfg.SampleRate)
	if err != nil {
		m.logger.Warn("session %s: transcription degraded: %v", s.ID, err)
		s.recordAnalysis(models.PlaceholderAnalysis("transcription unavailable"), m.cfg.TrendWindowPoints)
		if emit != nil && !s.closed {
			emit(EventError, map[string]interface{}{
				"session_id": s.ID,
				"code":       errors.GetCode(err),
				"message":    "transcription unavailable, continuing",
			})
		}
		return
	}
	if result.SkippedReason != "" {
		m.logger.Debug("session %s: transcription skipped: %s", s.ID, result.SkippedReason)
		return
	}

	fragment := result.Text
	if s.transcript == "" {
		s.transcript = fragment
	} else {
		s.transcript += " " + fragment
	}

	pitchAnalysis := m.analyzer.Analyze(ctx, fragment, pending, m.cfg.SampleRate)
	s.recordAnalysis(pitchAnalysis, m.cfg.TrendWindowPoints)
	if pitchAnalysis.Linguistic.WordsPerMinute > 0 {
		s.speakingPace = pitchAnalysis.Linguistic.WordsPerMinute
	}

	if s.closed {
		// Disconnected while inference was in flight: discard the result
		return
	}

	windowFeatures := analysis.ExtractAudioFeatures(s.window, m.cfg.SampleRate)
	if emit != nil {
		emit(EventAnalysisUpdate, map[string]interface{}{
			"session_id":          s.ID,
			"transcript_fragment": fragment,
			"analysis":            pitchAnalysis,
			"metrics":             s.snapshot(windowFeatures.VolumeLevel, windowFeatures.PitchVariation, true),
			"timestamp":           time.Now().UTC(),
		})
	}
}

// RequestInvestorResponse generates feedback from the accumulated state.
// With no metrics yet it answers off neutral defaults rather than failing.
// Repeated calls simply regenerate; there is no rate limit.
func (m *Manager) RequestInvestorResponse(ctx context.Context, s *Session, persona string, emit EmitFunc) {
	if s == nil || s.closed {
		return
	}

	windowFeatures := analysis.ExtractAudioFeatures(s.window, m.cfg.SampleRate)
	metrics := s.snapshot(windowFeatures.VolumeLevel, windowFeatures.PitchVariation, false)

	response, err := m.investor.Respond(ctx, ports.InvestorRequest{
		Transcript: s.transcript,
		Metrics:    metrics,
		Analysis:   s.lastAnalysis,
		Persona:    persona,
	})
	if err != nil {
		m.logger.Warn("session %s: investor generation failed: %v", s.ID, err)
		response = models.InvestorResponse{
			Persona:  "encouraging",
			Message:  "I'm having trouble processing your pitch right now. Please continue.",
			Interest: "low",
		}
	}

	if emit != nil && !s.closed {
		trendTail := metrics.ConfidenceTrend
		if len(trendTail) > 3 {
			trendTail = trendTail[len(trendTail)-3:]
		}
		emit(EventInvestorResponse, map[string]interface{}{
			"session_id": s.ID,
			"response":   response,
			"session_context": map[string]interface{}{
				"total_speaking_time": metrics.SpeakingTime,
				"confidence_trend":    trendTail,
				"current_pace":        metrics.SpeakingPace,
			},
			"timestamp": time.Now().UTC(),
		})
	}
}

// Close ends the session, emits the summary, and releases the record.
// Idempotent: closing twice, or closing a session that never received a
// chunk, is a no-op beyond the first call.
func (m *Manager) Close(s *Session, emit EmitFunc) {
	if s == nil || s.closed {
		return
	}
	s.closed = true

	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()

	totalDuration := time.Since(s.StartedAt).Seconds()
	speakingRatio := 0.0
	if totalDuration > 0 {
		speakingRatio = s.speakingTime / totalDuration
	}

	windowFeatures := analysis.ExtractAudioFeatures(s.window, m.cfg.SampleRate)
	summary := models.SessionSummary{
		SessionID:       s.ID,
		TotalDuration:   totalDuration,
		SpeakingTime:    s.speakingTime,
		SpeakingRatio:   speakingRatio,
		TotalChunks:     s.chunkCount,
		FinalTranscript: s.transcript,
		ConfidenceTrend: s.confidenceTrend,
		Emotions:        s.summarizeEmotions(),
		FinalMetrics:    s.snapshot(windowFeatures.VolumeLevel, windowFeatures.PitchVariation, false),
	}

	m.logger.Info("session %s closed after %.1fs (%d chunks)", s.ID, totalDuration, s.chunkCount)
	if emit != nil {
		emit(EventSessionEnded, summary)
	}
}

// trimBuffers enforces the rolling-window bound: when a buffer exceeds
// the cap it keeps the newest 70% of the cap
func (m *Manager) trimBuffers(s *Session) {
	maxSamples := int(m.cfg.MaxBufferSeconds * float64(m.cfg.SampleRate))
	keep := int(float64(maxSamples) * 0.7)

	if len(s.window) > maxSamples {
		s.window = append([]float64(nil), s.window[len(s.window)-keep:]...)
	}
	if len(s.pending) > maxSamples {
		s.pending = append([]float64(nil), s.pending[len(s.pending)-keep:]...)
	}
}

// recordAnalysis appends to the bounded trends and stores the latest
// analysis. Trends keep only the most recent points.
func (s *Session) recordAnalysis(a *models.PitchAnalysis, trendCap int) {
	s.lastAnalysis = a
	s.confidenceTrend = append(s.confidenceTrend, a.ConfidenceScore)
	if len(s.confidenceTrend) > trendCap {
		s.confidenceTrend = s.confidenceTrend[len(s.confidenceTrend)-trendCap:]
	}
	s.emotionTrend = append(s.emotionTrend, models.EmotionPoint{
		Emotion:   a.Emotion.Dominant,
		Timestamp: time.Now(),
	})
	if len(s.emotionTrend) > trendCap {
		s.emotionTrend = s.emotionTrend[len(s.emotionTrend)-trendCap:]
	}
}
