package analysis

import (
	"encoding/binary"
	"fmt"
)

// WAVInfo is the decoded shape of an uploaded PCM WAV file
type WAVInfo struct {
	SampleRate int
	Channels   int
	Duration   float64
	Samples    []float64 // mono: channels averaged
}

// ParseWAV decodes a 16-bit PCM WAV container. Uploads in other
// containers (webm, ogg) fail here and are analyzed transcript-only.
func ParseWAV(data []byte) (*WAVInfo, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
	)

	// Walk the chunk list; fmt and data are the only chunks we need
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			chunkLen = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, fmt.Errorf("truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported WAV encoding %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkLen]
		}

		// Chunks are word-aligned
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}

	if sampleRate <= 0 || channels <= 0 || pcm == nil {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d (want 16)", bitsPerSample)
	}

	interleaved := DecodePCM16(pcm)
	frames := len(interleaved) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += interleaved[i*channels+ch]
		}
		samples[i] = sum / float64(channels)
	}

	return &WAVInfo{
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   float64(frames) / float64(sampleRate),
		Samples:    samples,
	}, nil
}
