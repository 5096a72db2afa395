package llm

import (
	"context"
	"fmt"
	"strings"

	"gopitch/internal"
	"gopitch/models"
	"gopitch/ports"
)

// Investor personas. "encouraging" is the default whenever there is not
// enough signal to pick a sharper one.
const (
	PersonaVentureCapitalist = "venture_capitalist"
	PersonaAngelInvestor     = "angel_investor"
	PersonaTechnicalFounder  = "technical_founder"
	PersonaEncouraging       = "encouraging"
)

var personaVoices = map[string]string{
	PersonaVentureCapitalist: "a partner at a growth-stage VC fund; direct, numbers-first, probing on market size and defensibility",
	PersonaAngelInvestor:     "an angel investor who backs founders early; warm but asks pointed questions about the team and the first customers",
	PersonaTechnicalFounder:  "a technical founder turned investor; skeptical of buzzwords, digs into how the product actually works",
	PersonaEncouraging:       "a supportive pitch coach; keeps the speaker going and highlights one thing to improve",
}

var personaTemplates = map[string]string{
	PersonaVentureCapitalist: "Strong delivery. Before I take this to the partnership I need your CAC, your payback period, and why this market is winner-take-most. What are you seeing?",
	PersonaAngelInvestor:     "I like the energy here. Tell me more about who feels this problem most acutely and what your first ten customers said.",
	PersonaTechnicalFounder:  "Walk me through what happens under the hood when a user hits the core flow. I want specifics, not the vision slide.",
	PersonaEncouraging:       "You're doing well — keep going. Try slowing down slightly on the key numbers so they land.",
}

// listeningMessage is returned when no transcript has accumulated yet
const listeningMessage = "I'm listening... please continue with your pitch."

// InvestorAdapter implements ports.InvestorGenerator. When an LLM client
// is configured it generates persona-voiced feedback; otherwise (or on
// any LLM failure) it falls back to the persona's canned template, so the
// operation degrades instead of erroring.
type InvestorAdapter struct {
	client    ports.LLMClient
	model     string
	maxTokens int
	logger    *internal.Logger
}

// NewInvestorAdapter creates a generator. client may be nil.
func NewInvestorAdapter(client ports.LLMClient, model string, logger *internal.Logger) *InvestorAdapter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &InvestorAdapter{
		client:    client,
		model:     model,
		maxTokens: 512,
		logger:    logger,
	}
}

// Respond generates investor feedback for the accumulated pitch state
func (a *InvestorAdapter) Respond(ctx context.Context, req ports.InvestorRequest) (models.InvestorResponse, error) {
	persona := a.selectPersona(req)

	if strings.TrimSpace(req.Transcript) == "" {
		return models.InvestorResponse{
			Persona:  PersonaEncouraging,
			Message:  listeningMessage,
			Interest: "low",
		}, nil
	}

	response := models.InvestorResponse{
		Persona:  persona,
		Message:  personaTemplates[persona],
		Concerns: a.collectConcerns(req),
		Interest: interestLevel(req),
	}

	if a.client != nil {
		message, err := a.client.ChatCompletion(ctx, a.model, a.buildPrompt(persona, req), a.maxTokens)
		if err != nil {
			a.logger.Warn("investor generation degraded to template: %v", err)
		} else if strings.TrimSpace(message) != "" {
			response.Message = strings.TrimSpace(message)
		}
	}

	return response, nil
}

// selectPersona keys the persona off the metrics snapshot unless the
// caller asked for a specific one
func (a *InvestorAdapter) selectPersona(req ports.InvestorRequest) string {
	if _, ok := personaVoices[req.Persona]; ok {
		return req.Persona
	}

	score := latestConfidence(req)
	switch {
	case score < 40:
		return PersonaEncouraging
	case score >= 70:
		return PersonaVentureCapitalist
	case req.Metrics.SpeakingPace > 170:
		return PersonaTechnicalFounder
	default:
		return PersonaAngelInvestor
	}
}

func (a *InvestorAdapter) buildPrompt(persona string, req ports.InvestorRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n\n", personaVoices[persona])
	fmt.Fprintf(&b, "The founder's pitch so far:\n%s\n\n", req.Transcript)
	fmt.Fprintf(&b, "Delivery metrics: confidence %.0f/100, pace %.0f wpm, speaking time %.0fs, pauses %d.\n",
		latestConfidence(req), req.Metrics.SpeakingPace, req.Metrics.SpeakingTime, req.Metrics.PauseCount)
	if req.Analysis != nil {
		fmt.Fprintf(&b, "Dominant emotion: %s.\n", req.Analysis.Emotion.Dominant)
	}
	b.WriteString("\nRespond in 2-4 sentences as this investor would speak out loud. No preamble, no bullet points.")
	return b.String()
}

func (a *InvestorAdapter) collectConcerns(req ports.InvestorRequest) []string {
	var concerns []string
	if req.Analysis != nil {
		if req.Analysis.Linguistic.FillerRatio > 0.08 {
			concerns = append(concerns, "frequent filler words")
		}
		if req.Analysis.Audio.SilenceRatio > 0.4 {
			concerns = append(concerns, "long silences")
		}
	}
	if req.Metrics.SpeakingPace > 180 {
		concerns = append(concerns, "pace too fast")
	} else if req.Metrics.SpeakingPace > 0 && req.Metrics.SpeakingPace < 90 {
		concerns = append(concerns, "pace too slow")
	}
	return concerns
}

// latestConfidence prefers the freshest trend point, then the analysis
// score, then neutral
func latestConfidence(req ports.InvestorRequest) float64 {
	if n := len(req.Metrics.ConfidenceTrend); n > 0 {
		return req.Metrics.ConfidenceTrend[n-1]
	}
	if req.Analysis != nil {
		return req.Analysis.ConfidenceScore
	}
	return 50
}

func interestLevel(req ports.InvestorRequest) string {
	score := latestConfidence(req)
	switch {
	case score >= 75:
		return "high"
	case score >= 50:
		return "medium"
	default:
		return "low"
	}
}
