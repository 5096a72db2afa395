package ui

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"gopitch/internal/analysis"
	"gopitch/internal/errors"
	"gopitch/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// minUploadBytes rejects empty or truncated recordings before any
	// file or model work happens
	minUploadBytes = 1000

	// minUploadSeconds is the shortest recording worth analyzing
	minUploadSeconds = 0.5
)

// handleCreatePitch ingests a multipart upload: title, optional
// description, and the recording. Validation runs before any model is
// invoked; adapter failures degrade to a placeholder analysis so the
// upload still succeeds.
func (s *Server) handleCreatePitch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, errors.Unauthorized("not authenticated"))
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		respondError(c, errors.ValidationError("title is required"))
		return
	}
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		respondError(c, errors.ValidationError("audio_file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to read upload"))
		return
	}

	if len(data) < minUploadBytes {
		respondError(c, errors.ValidationError("recording too short"))
		return
	}

	// WAV uploads get full audio analysis; other containers are
	// transcript-only (duration taken as unknown)
	var wav *analysis.WAVInfo
	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".wav") {
		wav, err = analysis.ParseWAV(data)
		if err != nil {
			respondError(c, errors.ValidationError("unsupported media type: "+err.Error()))
			return
		}
		if wav.Duration < minUploadSeconds {
			respondError(c, errors.ValidationError("recording too short"))
			return
		}
	}

	path, err := s.files.Save(data, fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	pitch := &models.Pitch{
		UserID:      userID,
		Title:       title,
		Description: description,
		AudioPath:   path,
	}
	if wav != nil {
		pitch.DurationSeconds = wav.Duration
	}

	ctx := c.Request.Context()
	result, err := s.transcriber.TranscribeFile(ctx, path)
	var pitchAnalysis *models.PitchAnalysis
	switch {
	case err != nil:
		s.logger.Warn("upload transcription degraded: %v", err)
		pitchAnalysis = models.PlaceholderAnalysis("transcription unavailable")
	case result.SkippedReason != "":
		pitchAnalysis = models.PlaceholderAnalysis(result.SkippedReason)
	default:
		pitch.Transcript = result.Text
		var samples []float64
		sampleRate := 0
		if wav != nil {
			samples, sampleRate = wav.Samples, wav.SampleRate
		}
		pitchAnalysis = s.analyzer.Analyze(ctx, result.Text, samples, sampleRate)
	}

	if err := pitch.SetAnalysis(pitchAnalysis); err != nil {
		respondError(c, errors.Wrap(err, "failed to serialize analysis"))
		return
	}

	if err := s.pitches.CreatePitch(ctx, pitch); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pitch)
}

// handleListPitches returns the caller's pitches, newest first
func (s *Server) handleListPitches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, errors.Unauthorized("not authenticated"))
		return
	}

	pitches, err := s.pitches.ListUserPitches(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if pitches == nil {
		pitches = []*models.Pitch{}
	}
	c.JSON(http.StatusOK, pitches)
}

// handleGetPitch returns one pitch; 404 covers both unknown ids and
// pitches owned by someone else
func (s *Server) handleGetPitch(c *gin.Context) {
	userID, pitchID, ok := s.pitchRequest(c)
	if !ok {
		return
	}

	pitch, err := s.pitches.GetPitch(c.Request.Context(), userID, pitchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pitch)
}

// handleGetAudio streams the stored recording for a pitch
func (s *Server) handleGetAudio(c *gin.Context) {
	userID, pitchID, ok := s.pitchRequest(c)
	if !ok {
		return
	}

	pitch, err := s.pitches.GetPitch(c.Request.Context(), userID, pitchID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !s.files.Exists(pitch.AudioPath) {
		respondError(c, errors.NotFound("audio file"))
		return
	}

	c.FileAttachment(pitch.AudioPath, "pitch_"+pitch.ID.String()+filepath.Ext(pitch.AudioPath))
}

// pitchRequest extracts the caller and the :id path parameter
func (s *Server) pitchRequest(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, errors.Unauthorized("not authenticated"))
		return uuid.Nil, uuid.Nil, false
	}

	pitchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.ValidationError("invalid pitch id"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, pitchID, true
}
