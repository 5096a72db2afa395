package analysis

import (
	"strings"

	"gopitch/models"
)

// Filler and hedge vocabularies for the linguistic confidence heuristics.
// Matching is case-insensitive on whole words; two-word phrases are
// matched against adjacent token pairs.
var fillerWords = map[string]bool{
	"um": true, "uh": true, "er": true, "ah": true, "like": true,
	"actually": true, "basically": true, "literally": true, "right": true,
}

var fillerPhrases = [][2]string{
	{"you", "know"},
	{"i", "mean"},
	{"sort", "of"},
	{"kind", "of"},
}

var hedgeWords = map[string]bool{
	"maybe": true, "perhaps": true, "possibly": true, "probably": true,
	"hopefully": true, "somewhat": true, "might": true, "guess": true,
}

// ExtractLinguisticScores computes transcript-level confidence heuristics.
// durationSeconds drives the words-per-minute pace; zero duration leaves
// the pace at zero rather than dividing by it.
func ExtractLinguisticScores(transcript string, durationSeconds float64) models.LinguisticScores {
	scores := models.LinguisticScores{}

	tokens := tokenize(transcript)
	scores.WordCount = len(tokens)
	if len(tokens) == 0 {
		return scores
	}

	fillers := 0
	hedges := 0
	for i, tok := range tokens {
		if fillerWords[tok] {
			fillers++
		}
		if hedgeWords[tok] {
			hedges++
		}
		if i+1 < len(tokens) {
			for _, phrase := range fillerPhrases {
				if tok == phrase[0] && tokens[i+1] == phrase[1] {
					fillers++
				}
			}
		}
	}

	scores.FillerRatio = float64(fillers) / float64(len(tokens))
	scores.HedgeRatio = float64(hedges) / float64(len(tokens))
	if durationSeconds > 0 {
		scores.WordsPerMinute = round2(float64(len(tokens)) / durationSeconds * 60)
	}
	scores.Score = linguisticScore(scores)
	return scores
}

// linguisticScore maps the heuristics into [0, 100]. Fixed linear
// penalties; no tuning happens at runtime.
func linguisticScore(s models.LinguisticScores) float64 {
	score := 100.0
	score -= clamp(s.FillerRatio*300, 0, 40)
	score -= clamp(s.HedgeRatio*200, 0, 25)
	if s.WordCount < 10 {
		score -= 20
	}
	return round2(clamp(score, 0, 100))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
