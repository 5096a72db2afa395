package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopitch/internal/errors"
	"gopitch/models"
)

// sentiment weight per emotion label (transformer emotion head labels)
var labelSentiment = map[string]float64{
	"joy":      0.9,
	"surprise": 0.3,
	"neutral":  0.0,
	"sadness":  -0.6,
	"fear":     -0.7,
	"disgust":  -0.7,
	"anger":    -0.8,
}

// HTTPClassifier calls a hosted transformer emotion classifier. The
// endpoint follows the inference-server convention: POST {"inputs": text}
// returning a label/score distribution.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

// NewHTTPClassifier creates a classifier against the given endpoint
func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClassifier{url: url, client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (models.EmotionResult, error) {
	if c.url == "" {
		return models.EmotionResult{}, errors.ConfigInvalid("EMOTION_URL is not configured")
	}

	raw, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return models.EmotionResult{}, errors.Wrap(err, "failed to build classification request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return models.EmotionResult{}, errors.Wrap(err, "failed to build classification request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.EmotionResult{}, errors.ExternalServiceError("emotion", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.EmotionResult{}, errors.ExternalServiceError("emotion", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.EmotionResult{}, errors.ExternalServiceError("emotion",
			fmt.Errorf("http %d: %s", resp.StatusCode, string(body)))
	}

	type labelScore struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	// Servers return either [...] or [[...]] depending on batching
	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		var nested [][]labelScore
		if err := json.Unmarshal(body, &nested); err != nil || len(nested) == 0 {
			return models.EmotionResult{}, errors.ExternalServiceError("emotion",
				fmt.Errorf("unexpected response shape: %s", string(body)))
		}
		flat = nested[0]
	}
	if len(flat) == 0 {
		return models.EmotionResult{}, errors.ExternalServiceError("emotion",
			fmt.Errorf("empty classification result"))
	}

	result := models.EmotionResult{Scores: make(map[string]float64, len(flat))}
	best := flat[0]
	for _, ls := range flat {
		label := strings.ToLower(ls.Label)
		result.Scores[label] = ls.Score
		result.Sentiment += labelSentiment[label] * ls.Score
		if ls.Score > best.Score {
			best = ls
		}
	}
	result.Dominant = strings.ToLower(best.Label)
	return result, nil
}

// Lexicon-based fallback classifier, used when no model server is
// configured. Deterministic and dependency-free so live sessions keep
// producing emotion trends in degraded deployments.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

var heuristicLexicon = map[string]string{
	"excited": "joy", "great": "joy", "love": "joy", "amazing": "joy",
	"thrilled": "joy", "opportunity": "joy", "growth": "joy",
	"worried": "fear", "risk": "fear", "afraid": "fear", "concern": "fear",
	"unfortunately": "sadness", "lost": "sadness", "failed": "sadness",
	"frustrated": "anger", "angry": "anger",
}

func (h *HeuristicClassifier) Classify(ctx context.Context, text string) (models.EmotionResult, error) {
	counts := map[string]int{}
	total := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if label, ok := heuristicLexicon[word]; ok {
			counts[label]++
			total++
		}
	}

	result := models.NeutralEmotion()
	if total == 0 {
		return result, nil
	}

	result.Scores = make(map[string]float64, len(counts))
	bestLabel, bestCount := "neutral", 0
	for label, n := range counts {
		score := float64(n) / float64(total)
		result.Scores[label] = score
		result.Sentiment += labelSentiment[label] * score
		if n > bestCount {
			bestLabel, bestCount = label, n
		}
	}
	result.Dominant = bestLabel
	return result, nil
}
