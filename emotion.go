package attune

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/capitan"
)

// Closed vocabularies for assessment output. The model is instructed to pick
// from these; values outside the vocabulary are kept as-is rather than
// rejected, since downstream consumers treat emotion labels as opaque.
var (
	Emotions = []string{
		"stress", "calm", "sadness", "energy", "frustration",
		"clarity", "neutral", "joy", "gratitude", "anxiety",
	}
	Themes = []string{
		"work", "relationships", "health", "self-doubt",
		"rest", "creativity", "family", "growth",
	}
)

// Assessment is the structured emotional signal extracted from a transcript.
// It is always fully populated: missing fields in the model output are
// substituted with documented defaults, never left zero-valued by accident.
type Assessment struct {
	Emotion           string   `json:"emotion"`
	Confidence        float64  `json:"confidence"`
	SecondaryEmotions []string `json:"secondary_emotions"`
	Themes            []string `json:"themes"`
	Intensity         float64  `json:"intensity"`
	Notes             string   `json:"notes,omitempty"`
	SuggestedTitle    string   `json:"suggested_title,omitempty"`
	Source            string   `json:"source"` // "ai" or "fallback"
}

// NeutralAssessment returns the canonical fallback assessment. It is a fixed
// value, identical across all failure causes and repeated calls.
func NeutralAssessment() Assessment {
	return Assessment{
		Emotion:           "neutral",
		Confidence:        0.0,
		SecondaryEmotions: []string{},
		Themes:            []string{},
		Intensity:         0.5,
		Source:            "fallback",
	}
}

const assessSystemPrompt = `You are an emotion analyst reviewing journal entries.

Your role:
- Analyze the transcript for emotional content
- Identify primary emotion, intensity (0-1), and themes
- Keep analysis brief and focused

Available emotions: stress, calm, sadness, energy, frustration, clarity, neutral, joy, gratitude, anxiety
Available themes: work, relationships, health, self-doubt, rest, creativity, family, growth

Respond in JSON format only:
{
    "validated_emotion": "the most accurate primary emotion",
    "confidence": 0.0-1.0,
    "secondary_emotions": ["list", "of", "other", "emotions"],
    "themes": ["detected", "themes"],
    "intensity": 0.0-1.0,
    "notes": "brief observation (optional)",
    "suggested_title": "2-3 word title capturing the entry"
}

Be concise. Focus on accuracy over explanation. The suggested_title should be a short, evocative phrase (e.g. "A Busy Day at Work", "Grateful for Friends").`

// EmotionAssessor classifies a transcript into an emotion/intensity/theme
// structure via a single model call.
type EmotionAssessor struct {
	model     LanguageModel
	maxTokens int
}

// NewEmotionAssessor creates an assessor bound to the given model.
func NewEmotionAssessor(model LanguageModel) *EmotionAssessor {
	return &EmotionAssessor{
		model:     model,
		maxTokens: DefaultAssessTokens,
	}
}

// WithMaxTokens sets the output token budget for assessment calls.
func (a *EmotionAssessor) WithMaxTokens(n int) *EmotionAssessor {
	a.maxTokens = n
	return a
}

// assessWire mirrors the JSON shape the model is asked to produce. Pointers
// distinguish absent keys from zero values so defaults apply per-key.
type assessWire struct {
	ValidatedEmotion  string   `json:"validated_emotion"`
	Confidence        *float64 `json:"confidence"`
	SecondaryEmotions []string `json:"secondary_emotions"`
	Themes            []string `json:"themes"`
	Intensity         *float64 `json:"intensity"`
	Notes             string   `json:"notes"`
	SuggestedTitle    string   `json:"suggested_title"`
}

// Assess classifies the transcript. It never returns an error: on any model
// or parse failure the canonical neutral assessment is returned with
// Source="fallback" and an AgentFallback signal is emitted.
func (a *EmotionAssessor) Assess(ctx context.Context, transcript string) Assessment {
	userMessage := fmt.Sprintf(`Analyze the emotional content of this journal entry:

%q

Provide your analysis in JSON format.`, transcript)

	raw, err := a.model.Generate(ctx, assessSystemPrompt, userMessage, a.maxTokens)
	if err != nil {
		return a.fallback(ctx, err)
	}

	var wire assessWire
	if err := ExtractObject(raw, &wire); err != nil {
		return a.fallback(ctx, err)
	}

	result := Assessment{
		Emotion:           wire.ValidatedEmotion,
		Confidence:        0.5,
		SecondaryEmotions: wire.SecondaryEmotions,
		Themes:            wire.Themes,
		Intensity:         0.5,
		Notes:             wire.Notes,
		SuggestedTitle:    strings.TrimSpace(wire.SuggestedTitle),
		Source:            "ai",
	}
	if result.Emotion == "" {
		result.Emotion = "neutral"
	}
	if wire.Confidence != nil {
		result.Confidence = clamp01(*wire.Confidence)
	}
	if wire.Intensity != nil {
		result.Intensity = clamp01(*wire.Intensity)
	}
	if result.SecondaryEmotions == nil {
		result.SecondaryEmotions = []string{}
	}
	if result.Themes == nil {
		result.Themes = []string{}
	}
	return result
}

// clamp01 bounds a model-reported score to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// fallback emits the degradation signal and returns the neutral assessment.
func (a *EmotionAssessor) fallback(ctx context.Context, cause error) Assessment {
	capitan.Emit(ctx, AgentFallback,
		FieldAgent.Field("assess"),
		FieldError.Field(cause),
	)
	return NeutralAssessment()
}
