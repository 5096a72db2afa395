package analysis

import (
	"encoding/binary"
	"math"
	"math/cmplx"

	"gopitch/models"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// frameSize is the analysis window for frame-level features (32 ms at 16 kHz)
	frameSize = 512

	// SilenceEnergy is the mean-square threshold below which audio is
	// treated as too quiet to transcribe
	SilenceEnergy = 0.001

	// SpeechEnergy is the mean-square threshold that gates the streaming
	// path: windows below it skip model invocation entirely
	SpeechEnergy = 0.01

	// minPauseSeconds is the minimum silent run counted as a pause
	minPauseSeconds = 0.3

	// maxSpectrumSamples caps the FFT input so centroid cost stays flat
	maxSpectrumSamples = 1 << 14
)

// DecodePCM16 converts little-endian 16-bit PCM bytes to normalized
// samples in [-1, 1]. A trailing odd byte is dropped.
func DecodePCM16(data []byte) []float64 {
	n := len(data) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[2*i:]))
		samples[i] = float64(v) / 32768.0
	}
	return samples
}

// EncodeWAV wraps normalized mono samples in a 16-bit PCM WAV container
func EncodeWAV(samples []float64, sampleRate int) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, 44+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(buf[44+2*i:], uint16(int16(s*32767)))
	}
	return buf
}

// Energy returns the mean squared amplitude of the samples
func Energy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return sum / float64(len(samples))
}

// ExtractAudioFeatures computes signal-level metrics over one window.
// All features are derived from the full window, so recomputation always
// yields the same snapshot for the same accumulated audio.
func ExtractAudioFeatures(samples []float64, sampleRate int) models.AudioFeatures {
	features := models.AudioFeatures{}
	if len(samples) == 0 || sampleRate <= 0 {
		return features
	}

	energy := Energy(samples)
	features.Energy = energy
	features.Duration = float64(len(samples)) / float64(sampleRate)

	rms := math.Sqrt(energy)
	features.VolumeLevel = math.Min(100, round2(rms*100))

	// Frame-level zero-crossing rate and silence runs
	var zcrs []float64
	silentFrames := 0
	totalFrames := 0
	speechFrames := 0
	pauseRun := 0
	minPauseFrames := int(minPauseSeconds * float64(sampleRate) / frameSize)
	if minPauseFrames < 1 {
		minPauseFrames = 1
	}

	for start := 0; start+frameSize <= len(samples); start += frameSize {
		frame := samples[start : start+frameSize]
		totalFrames++

		crossings := 0
		for i := 1; i < len(frame); i++ {
			if (frame[i-1] >= 0) != (frame[i] >= 0) {
				crossings++
			}
		}
		zcrs = append(zcrs, float64(crossings)/float64(len(frame)-1))

		if Energy(frame) < SilenceEnergy {
			silentFrames++
			pauseRun++
		} else {
			speechFrames++
			if pauseRun >= minPauseFrames {
				features.PauseCount++
			}
			pauseRun = 0
		}
	}
	if pauseRun >= minPauseFrames {
		features.PauseCount++
	}

	if totalFrames > 0 {
		features.SilenceRatio = float64(silentFrames) / float64(totalFrames)
	}
	features.SpeakingTime = float64(speechFrames*frameSize) / float64(sampleRate)

	if sd, err := stats.StandardDeviation(stats.Float64Data(zcrs)); err == nil {
		features.PitchVariation = round3(sd)
	}

	features.SpectralCentroid = round2(spectralCentroid(samples, sampleRate))

	return features
}

// spectralCentroid is the magnitude-weighted mean frequency of the window
func spectralCentroid(samples []float64, sampleRate int) float64 {
	if len(samples) < frameSize {
		return 0
	}
	if len(samples) > maxSpectrumSamples {
		samples = samples[len(samples)-maxSpectrumSamples:]
	}

	fft := fourier.NewFFT(len(samples))
	coeffs := fft.Coefficients(nil, samples)

	var num, den float64
	for i, c := range coeffs {
		mag := cmplx.Abs(c)
		freq := fft.Freq(i) * float64(sampleRate)
		num += freq * mag
		den += mag
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
