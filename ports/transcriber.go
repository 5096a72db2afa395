package ports

import "context"

// TranscriptResult is the outcome of one transcription attempt. A skipped
// transcription (silence, too short) is not an error.
type TranscriptResult struct {
	Text          string
	SkippedReason string
}

// Transcriber wraps an external speech-to-text model. Implementations are
// stateless from the caller's perspective; blocking inference is bounded
// internally so the caller's loop stays responsive.
type Transcriber interface {
	// TranscribeFile transcribes an encoded audio file on disk
	TranscribeFile(ctx context.Context, path string) (TranscriptResult, error)

	// TranscribePCM transcribes normalized mono PCM samples
	TranscribePCM(ctx context.Context, samples []float64, sampleRate int) (TranscriptResult, error)
}
