package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopitch/internal"
	"gopitch/internal/analysis"
	"gopitch/internal/errors"
	"gopitch/ports"

	"golang.org/x/sync/semaphore"
)

const (
	// minFileBytes: anything smaller is an empty or truncated container
	minFileBytes = 1000

	// minSpeechSeconds: windows shorter than this are skipped, not errors
	minSpeechSeconds = 0.5
)

// WhisperTranscriber calls a whisper.cpp style transcription server over
// HTTP. Inference is bounded by a semaphore so at most maxConcurrent
// transcriptions run at once; callers block (or time out via ctx) rather
// than pile unbounded work onto the model server.
type WhisperTranscriber struct {
	baseURL string
	client  *http.Client
	sem     *semaphore.Weighted
	logger  *internal.Logger
}

// NewWhisperTranscriber creates a transcriber against baseURL
func NewWhisperTranscriber(baseURL string, timeout time.Duration, maxConcurrent int64) *WhisperTranscriber {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &WhisperTranscriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		sem:     semaphore.NewWeighted(maxConcurrent),
		logger:  internal.NewDefaultLogger(),
	}
}

// TranscribeFile transcribes an encoded audio file on disk
func (w *WhisperTranscriber) TranscribeFile(ctx context.Context, path string) (ports.TranscriptResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.TranscriptResult{}, errors.Wrap(err, "audio file not found")
	}
	if info.Size() < minFileBytes {
		return ports.TranscriptResult{SkippedReason: "audio file too small"}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ports.TranscriptResult{}, errors.Wrap(err, "failed to read audio file")
	}
	return w.transcribe(ctx, data, filepath.Base(path))
}

// TranscribePCM transcribes normalized mono PCM samples. The quality gate
// runs before any model call: short or near-silent windows are skipped.
func (w *WhisperTranscriber) TranscribePCM(ctx context.Context, samples []float64, sampleRate int) (ports.TranscriptResult, error) {
	duration := float64(len(samples)) / float64(sampleRate)
	if duration < minSpeechSeconds {
		return ports.TranscriptResult{SkippedReason: "audio too short"}, nil
	}
	if analysis.Energy(samples) < analysis.SilenceEnergy {
		return ports.TranscriptResult{SkippedReason: "no speech detected"}, nil
	}
	return w.transcribe(ctx, analysis.EncodeWAV(samples, sampleRate), "window.wav")
}

func (w *WhisperTranscriber) transcribe(ctx context.Context, audio []byte, filename string) (ports.TranscriptResult, error) {
	if w.baseURL == "" {
		return ports.TranscriptResult{}, errors.ConfigInvalid("WHISPER_URL is not configured")
	}

	if err := w.sem.Acquire(ctx, 1); err != nil {
		return ports.TranscriptResult{}, errors.Wrap(err, "transcription capacity wait cancelled")
	}
	defer w.sem.Release(1)

	start := time.Now()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return ports.TranscriptResult{}, errors.Wrap(err, "failed to build transcription request")
	}
	if _, err := part.Write(audio); err != nil {
		return ports.TranscriptResult{}, errors.Wrap(err, "failed to build transcription request")
	}
	// Deterministic decoding: same input, same transcript
	_ = writer.WriteField("temperature", "0.0")
	_ = writer.WriteField("response_format", "json")
	if err := writer.Close(); err != nil {
		return ports.TranscriptResult{}, errors.Wrap(err, "failed to build transcription request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/inference", &body)
	if err != nil {
		return ports.TranscriptResult{}, errors.Wrap(err, "failed to build transcription request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return ports.TranscriptResult{}, errors.ExternalServiceError("transcription", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.TranscriptResult{}, errors.ExternalServiceError("transcription", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.TranscriptResult{}, errors.ExternalServiceError("transcription",
			fmt.Errorf("http %d: %s", resp.StatusCode, string(raw)))
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ports.TranscriptResult{}, errors.ExternalServiceError("transcription", err)
	}

	text := strings.TrimSpace(decoded.Text)
	w.logger.Debug("transcription completed in %.2fs (%d bytes in, %d chars out)",
		time.Since(start).Seconds(), len(audio), len(text))

	if len(text) <= 3 {
		// Whisper emits punctuation-only output for borderline audio
		return ports.TranscriptResult{SkippedReason: "no meaningful speech"}, nil
	}
	return ports.TranscriptResult{Text: text}, nil
}

// MockTranscriber is a transcriber stub for tests
type MockTranscriber struct {
	Text  string
	Skip  string
	Error error
	Calls int
}

func (m *MockTranscriber) TranscribeFile(ctx context.Context, path string) (ports.TranscriptResult, error) {
	return m.result()
}

func (m *MockTranscriber) TranscribePCM(ctx context.Context, samples []float64, sampleRate int) (ports.TranscriptResult, error) {
	return m.result()
}

func (m *MockTranscriber) result() (ports.TranscriptResult, error) {
	m.Calls++
	if m.Error != nil {
		return ports.TranscriptResult{}, m.Error
	}
	if m.Skip != "" {
		return ports.TranscriptResult{SkippedReason: m.Skip}, nil
	}
	if m.Text != "" {
		return ports.TranscriptResult{Text: m.Text}, nil
	}
	return ports.TranscriptResult{Text: "we are building the future of voice coaching"}, nil
}
